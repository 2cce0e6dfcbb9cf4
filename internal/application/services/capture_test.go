package services_test

import (
	"context"

	"github.com/DanielPopoola/photobooth/internal/application"
	"github.com/DanielPopoola/photobooth/internal/application/services/testhelpers"
	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *PhotoServicesTestSuite) Test_SetSize_RemembersPreviousFrame() {
	t := suite.T()
	sess := domain.NewSession("s1")

	frame, err := suite.capture.SetSize(sess, "frame1")
	require.NoError(t, err)
	assert.Equal(t, 832, frame.Width)

	_, err = suite.capture.SetSize(sess, "frame2")
	require.NoError(t, err)
	assert.Equal(t, "frame1", sess.PreviousFrameKey)
	assert.Equal(t, "20.00", sess.Price)

	_, err = suite.capture.SetSize(sess, "frame9")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func (suite *PhotoServicesTestSuite) Test_SaveImage_FullCreatesPendingPhoto() {
	ctx := context.Background()
	t := suite.T()

	sess := domain.NewSession("s1")
	_, err := suite.capture.SetSize(sess, "frame1")
	require.NoError(t, err)

	saved, err := suite.capture.SaveImage(ctx, sess, domain.VariantOriginal, testhelpers.ImageDataURL("pixels"))
	require.NoError(t, err)
	assert.Len(t, saved.UniqueCode, domain.UniqueCodeLength)
	assert.Equal(t, saved.Filename, sess.OriginalFilename)

	content, err := afero.ReadFile(suite.fs, saved.Path)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(content))

	photo, err := suite.photoRepo.FindByUniqueCode(ctx, saved.UniqueCode)
	require.NoError(t, err)
	assert.Equal(t, domain.PhotoPending, photo.Status)
	assert.Equal(t, domain.PhotoOriginal, photo.Type)
	assert.Equal(t, "7 cm x 10 cm", photo.Frame)
}

func (suite *PhotoServicesTestSuite) Test_SaveImage_AIBecomesDeliverable() {
	ctx := context.Background()
	t := suite.T()

	sess := domain.NewSession("s1")
	_, err := suite.capture.SetSize(sess, "frame1")
	require.NoError(t, err)
	full, err := suite.capture.SaveImage(ctx, sess, domain.VariantOriginal, testhelpers.ImageDataURL("pixels"))
	require.NoError(t, err)

	ai, err := suite.capture.SaveImage(ctx, sess, domain.VariantAI, testhelpers.ImageDataURL("stylized"))
	require.NoError(t, err)
	assert.Equal(t, full.UniqueCode, ai.UniqueCode)
	assert.Equal(t, ai.Filename, sess.DeliverableFilename())

	photo, err := suite.photoRepo.FindByUniqueCode(ctx, full.UniqueCode)
	require.NoError(t, err)
	assert.Equal(t, domain.PhotoAI, photo.Type)
	assert.Equal(t, ai.Filename, photo.Filename)
	assert.Equal(t, full.Path, photo.OriginalPath, "the replaced capture stays recorded")
}

func (suite *PhotoServicesTestSuite) Test_SaveImage_PreviewIsRecordedOnPhoto() {
	ctx := context.Background()
	t := suite.T()

	early := domain.NewSession("s1")
	_, err := suite.capture.SetSize(early, "frame1")
	require.NoError(t, err)
	firstPreview, err := suite.capture.SaveImage(ctx, early, domain.VariantPreview, testhelpers.ImageDataURL("small"))
	require.NoError(t, err)
	assert.Empty(t, firstPreview.UniqueCode)
	full, err := suite.capture.SaveImage(ctx, early, domain.VariantOriginal, testhelpers.ImageDataURL("pixels"))
	require.NoError(t, err)

	photo, err := suite.photoRepo.FindByUniqueCode(ctx, full.UniqueCode)
	require.NoError(t, err)
	assert.Equal(t, firstPreview.Path, photo.PreviewPath)

	late := domain.NewSession("s2")
	_, err = suite.capture.SetSize(late, "frame1")
	require.NoError(t, err)
	full, err = suite.capture.SaveImage(ctx, late, domain.VariantOriginal, testhelpers.ImageDataURL("pixels"))
	require.NoError(t, err)
	preview, err := suite.capture.SaveImage(ctx, late, domain.VariantPreview, testhelpers.ImageDataURL("small"))
	require.NoError(t, err)
	assert.Equal(t, full.UniqueCode, preview.UniqueCode)

	retaken, err := suite.capture.SaveImage(ctx, late, domain.VariantPreview, testhelpers.ImageDataURL("smaller"))
	require.NoError(t, err)

	photo, err = suite.photoRepo.FindByUniqueCode(ctx, full.UniqueCode)
	require.NoError(t, err)
	assert.Equal(t, retaken.Path, photo.PreviewPath)
	exists, _ := afero.Exists(suite.fs, preview.Path)
	assert.False(t, exists, "superseded preview is removed")
}

func (suite *PhotoServicesTestSuite) Test_SaveImage_RejectsBadInput() {
	ctx := context.Background()
	t := suite.T()
	sess := domain.NewSession("s1")

	_, err := suite.capture.SaveImage(ctx, sess, domain.VariantPreview, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = suite.capture.SaveImage(ctx, sess, domain.VariantPreview, "not-a-data-url")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = suite.capture.SaveImage(ctx, sess, domain.VariantOriginal, testhelpers.ImageDataURL("pixels"))
	assert.ErrorIs(t, err, domain.ErrValidation, "full capture needs a frame")

	_, err = suite.capture.SaveImage(ctx, sess, domain.VariantAI, testhelpers.ImageDataURL("pixels"))
	assert.ErrorIs(t, err, domain.ErrValidation, "ai needs a capture")

	files, err := afero.ReadDir(suite.fs, testhelpers.OriginalDir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func (suite *PhotoServicesTestSuite) Test_DeletePhoto_RetakeKeepsFrame() {
	ctx := context.Background()
	t := suite.T()

	sess := domain.NewSession("s1")
	_, err := suite.capture.SetSize(sess, "frame2")
	require.NoError(t, err)
	preview, err := suite.capture.SaveImage(ctx, sess, domain.VariantPreview, testhelpers.ImageDataURL("p"))
	require.NoError(t, err)
	full, err := suite.capture.SaveImage(ctx, sess, domain.VariantOriginal, testhelpers.ImageDataURL("f"))
	require.NoError(t, err)

	require.NoError(t, suite.capture.DeletePhoto(ctx, sess))

	_, err = suite.photoRepo.FindByUniqueCode(ctx, full.UniqueCode)
	assert.ErrorIs(t, err, domain.ErrPhotoNotFound)
	for _, p := range []string{preview.Path, full.Path} {
		exists, _ := afero.Exists(suite.fs, p)
		assert.False(t, exists, p)
	}
	assert.Equal(t, "frame2", sess.FrameKey)
	assert.Empty(t, sess.OriginalFilename)

	err = suite.capture.DeletePhoto(ctx, sess)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func (suite *PhotoServicesTestSuite) Test_DeletePhoto_RefusesPaidPhoto() {
	ctx := context.Background()
	t := suite.T()

	paid := testhelpers.CreatePaidPhoto(t, ctx, suite.photoRepo, suite.paymentRepo, suite.fs)
	sess := domain.NewSession("s1")
	sess.RecordArtifact(domain.VariantOriginal, paid.Filename, paid.Path)
	sess.RecordArtifact(domain.VariantPreview, "p.jpeg", testhelpers.PreviewDir+"/p.jpeg")

	err := suite.capture.DeletePhoto(ctx, sess)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	exists, _ := afero.Exists(suite.fs, paid.Path)
	assert.True(t, exists)
}

func (suite *PhotoServicesTestSuite) Test_Summary() {
	t := suite.T()
	sess := domain.NewSession("s1")

	_, err := suite.capture.Summary(sess)
	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, application.ErrCodeSessionMissing, svcErr.Code)

	_, err = suite.capture.SetSize(sess, "frame1")
	require.NoError(t, err)
	sess.RecordArtifact(domain.VariantPreview, "p.jpeg", testhelpers.PreviewDir+"/p.jpeg")

	summary, err := suite.capture.Summary(sess)
	require.NoError(t, err)
	assert.Equal(t, "7 cm x 10 cm", summary.FrameLabel)
	assert.Equal(t, "10.00", summary.Price)
	assert.Equal(t, 1184, summary.Height)
	assert.Equal(t, "p.jpeg", summary.PreviewFilename)
}
