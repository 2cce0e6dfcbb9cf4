package services_test

import (
	"context"
	"io"
	"time"

	"github.com/DanielPopoola/photobooth/internal/application/services/testhelpers"
	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *PhotoServicesTestSuite) Test_Download_ServesPaidPhoto() {
	ctx := context.Background()
	t := suite.T()

	photo := testhelpers.CreatePaidPhoto(t, ctx, suite.photoRepo, suite.paymentRepo, suite.fs)
	token, err := suite.issuer.Token(photo.Filename, true)
	require.NoError(t, err)

	dl, err := suite.download.Open(ctx, token)
	require.NoError(t, err)
	defer dl.Body.Close()

	body, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, "original", string(body))
	assert.Equal(t, photo.Filename, dl.Filename)
}

func (suite *PhotoServicesTestSuite) Test_Download_ExpiredAndInvalidTokens() {
	ctx := context.Background()
	t := suite.T()

	photo := testhelpers.CreatePaidPhoto(t, ctx, suite.photoRepo, suite.paymentRepo, suite.fs)
	expired, err := suite.issuerAt(-time.Hour).Token(photo.Filename, true)
	require.NoError(t, err)

	_, err = suite.download.Open(ctx, expired)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)

	_, err = suite.download.Open(ctx, "not.a.token")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	_, err = suite.download.Open(ctx, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func (suite *PhotoServicesTestSuite) Test_Download_MissingFileIsNotFound() {
	ctx := context.Background()
	t := suite.T()

	photo := testhelpers.CreatePaidPhoto(t, ctx, suite.photoRepo, suite.paymentRepo, suite.fs)
	require.NoError(t, suite.fs.Remove(photo.Path))
	token, err := suite.issuer.Token(photo.Filename, false)
	require.NoError(t, err)

	_, err = suite.download.Open(ctx, token)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func (suite *PhotoServicesTestSuite) Test_Download_UnpaidPhotoIsRejected() {
	ctx := context.Background()
	t := suite.T()

	photo := testhelpers.CreatePendingPhoto(t, ctx, suite.photoRepo, suite.fs, time.Now().UTC())
	token, err := suite.issuer.Token(photo.Filename, false)
	require.NoError(t, err)

	_, err = suite.download.Open(ctx, token)

	assert.ErrorIs(t, err, domain.ErrDownloadRejected)
}
