package services_test

import (
	"context"
	"time"

	"github.com/DanielPopoola/photobooth/internal/application/services/testhelpers"
	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *PhotoServicesTestSuite) Test_Sweep_DeletesAbandonedAndPurgesFailures() {
	ctx := context.Background()
	t := suite.T()
	now := time.Now().UTC()

	abandoned := testhelpers.CreatePendingPhoto(t, ctx, suite.photoRepo, suite.fs, now.Add(-2*time.Hour))
	fresh := testhelpers.CreatePendingPhoto(t, ctx, suite.photoRepo, suite.fs, now.Add(-time.Minute))
	inCheckout := testhelpers.CreatePendingPhoto(t, ctx, suite.photoRepo, suite.fs, now.Add(-2*time.Hour))
	testhelpers.CreatePendingPayment(t, ctx, suite.paymentRepo, inCheckout, 3*time.Hour)
	paid := testhelpers.CreatePaidPhoto(t, ctx, suite.photoRepo, suite.paymentRepo, suite.fs)
	failed := testhelpers.CreatePendingPhoto(t, ctx, suite.photoRepo, suite.fs, now)
	suite.testDB.ForceStatus(t, failed.ID, domain.PhotoFailed)

	report, err := suite.sweeper.Run(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Deleted)
	assert.Equal(t, 1, report.Purged)
	assert.Zero(t, report.Failed)

	_, err = suite.photoRepo.FindByID(ctx, abandoned.ID)
	assert.ErrorIs(t, err, domain.ErrPhotoNotFound)

	for _, p := range []*domain.Photo{fresh, inCheckout, paid} {
		kept, err := suite.photoRepo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		exists, _ := afero.Exists(suite.fs, kept.Path)
		assert.True(t, exists, kept.Path)
	}

	purged, err := suite.photoRepo.FindByID(ctx, failed.ID)
	require.NoError(t, err)
	assert.NotNil(t, purged.PurgedAt)
	exists, _ := afero.Exists(suite.fs, failed.Path)
	assert.False(t, exists)

	again, err := suite.sweeper.Run(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, again.Deleted+again.Purged)
}

func (suite *PhotoServicesTestSuite) Test_Sweep_RemovesEveryFileOfAbandonedAIPhoto() {
	ctx := context.Background()
	t := suite.T()
	now := time.Now().UTC()

	photo := testhelpers.CreatePendingPhoto(t, ctx, suite.photoRepo, suite.fs, now.Add(-2*time.Hour))
	original := photo.Path

	preview := testhelpers.PreviewDir + "/preview_" + photo.UniqueCode + ".jpeg"
	require.NoError(t, afero.WriteFile(suite.fs, preview, []byte("preview"), 0o644))
	require.NoError(t, suite.photoRepo.AttachPreview(ctx, photo, preview))

	aiName := "ai_" + photo.UniqueCode + ".png"
	ai := testhelpers.AIDir + "/" + aiName
	require.NoError(t, afero.WriteFile(suite.fs, ai, []byte("stylized"), 0o644))
	require.NoError(t, suite.photoRepo.ReplaceArtifact(ctx, photo, aiName, ai, domain.PhotoAI))

	report, err := suite.sweeper.Run(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Deleted)
	assert.Zero(t, report.Failed)

	for _, p := range []string{original, preview, ai} {
		exists, _ := afero.Exists(suite.fs, p)
		assert.False(t, exists, p)
	}
}

func (suite *PhotoServicesTestSuite) Test_Sweep_PurgesEveryFileOfFailedAIPhoto() {
	ctx := context.Background()
	t := suite.T()
	now := time.Now().UTC()

	photo := testhelpers.CreatePendingPhoto(t, ctx, suite.photoRepo, suite.fs, now)
	original := photo.Path
	aiName := "ai_" + photo.UniqueCode + ".png"
	ai := testhelpers.AIDir + "/" + aiName
	require.NoError(t, afero.WriteFile(suite.fs, ai, []byte("stylized"), 0o644))
	require.NoError(t, suite.photoRepo.ReplaceArtifact(ctx, photo, aiName, ai, domain.PhotoAI))
	suite.testDB.ForceStatus(t, photo.ID, domain.PhotoCanceled)

	report, err := suite.sweeper.Run(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Purged)

	for _, p := range []string{original, ai} {
		exists, _ := afero.Exists(suite.fs, p)
		assert.False(t, exists, p)
	}
}
