package services_test

import (
	"context"
	"net/url"
	"time"

	"github.com/DanielPopoola/photobooth/internal/application/services/testhelpers"
	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *PhotoServicesTestSuite) Test_LookupDownload_RejectsFailedThenServesPaid() {
	ctx := context.Background()
	t := suite.T()

	photo := testhelpers.CreatePendingPhoto(t, ctx, suite.photoRepo, suite.fs, time.Now().UTC())
	suite.testDB.ForceStatus(t, photo.ID, domain.PhotoFailed)

	_, err := suite.admin.LookupDownload(ctx, photo.UniqueCode)
	assert.ErrorIs(t, err, domain.ErrDownloadRejected)
	assert.EqualError(t, err, "The Photo's Payment Failed. Unable to Download.")

	suite.testDB.ForceStatus(t, photo.ID, domain.PhotoPaid)

	result, err := suite.admin.LookupDownload(ctx, "  "+photo.UniqueCode+" ")
	require.NoError(t, err)
	assert.Equal(t, domain.PhotoPaid, result.Status)

	link, err := url.Parse(result.DownloadURL)
	require.NoError(t, err)
	filename, err := suite.issuerAt(365 * 24 * time.Hour).Resolve(link.Query().Get("token"))
	require.NoError(t, err, "admin links do not expire")
	assert.Equal(t, photo.Filename, filename)
}

func (suite *PhotoServicesTestSuite) Test_LookupDownload_StatusMessages() {
	ctx := context.Background()
	t := suite.T()

	cases := map[domain.PhotoStatus]string{
		domain.PhotoExpired:  "The Photo has Expired. Unable to Download.",
		domain.PhotoCanceled: "The Photo's Payment was Canceled. Unable to Download.",
		domain.PhotoRefunded: "The Photo's Payment was Refunded. Unable to Download.",
		domain.PhotoPending:  "The Photo has not been Paid. Unable to Download.",
	}
	for status, message := range cases {
		photo := testhelpers.CreatePendingPhoto(t, ctx, suite.photoRepo, suite.fs, time.Now().UTC())
		suite.testDB.ForceStatus(t, photo.ID, status)

		_, err := suite.admin.LookupDownload(ctx, photo.UniqueCode)
		assert.EqualError(t, err, message, string(status))
	}

	_, err := suite.admin.LookupDownload(ctx, "ZZZZZZ")
	assert.ErrorIs(t, err, domain.ErrPhotoNotFound)

	_, err = suite.admin.LookupDownload(ctx, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
