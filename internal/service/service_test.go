package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/shortly/internal/database"
	"github.com/vadimbarashkov/shortly/internal/models"
)

type MockURLRepository struct {
	mock.Mock
}

func (m *MockURLRepository) Create(ctx context.Context, shortCode, originalURL string) (*models.URL, error) {
	args := m.Called(ctx, shortCode, originalURL)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

func (m *MockURLRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	args := m.Called(ctx, shortCode)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

func (m *MockURLRepository) GetByOriginalURL(ctx context.Context, originalURL string) (*models.URL, error) {
	args := m.Called(ctx, originalURL)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

type MockCounterStore struct {
	mock.Mock
}

func (m *MockCounterStore) Next(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

type MockReachabilityChecker struct {
	mock.Mock
}

func (m *MockReachabilityChecker) Check(ctx context.Context, rawURL string) error {
	args := m.Called(ctx, rawURL)
	return args.Error(0)
}

type URLServiceTestSuite struct {
	suite.Suite
	errUnknown  error
	repoMock    *MockURLRepository
	counterMock *MockCounterStore
	checkerMock *MockReachabilityChecker
	svc         *URLService
}

func (suite *URLServiceTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
}

func (suite *URLServiceTestSuite) SetupSubTest() {
	suite.repoMock = new(MockURLRepository)
	suite.counterMock = new(MockCounterStore)
	suite.checkerMock = new(MockReachabilityChecker)
	suite.svc = NewURLService(suite.repoMock, suite.counterMock, suite.checkerMock)
}

func (suite *URLServiceTestSuite) TearDownSubTest() {
	suite.repoMock.AssertExpectations(suite.T())
	suite.counterMock.AssertExpectations(suite.T())
	suite.checkerMock.AssertExpectations(suite.T())
}

func (suite *URLServiceTestSuite) TestShortenURL() {
	suite.Run("missing scheme", func() {
		url, err := suite.svc.ShortenURL(context.Background(), "example.com")

		suite.Error(err)
		suite.ErrorIs(err, ErrInvalidURL)
		suite.Nil(url)
		suite.checkerMock.AssertNotCalled(suite.T(), "Check", mock.Anything, mock.Anything)
		suite.counterMock.AssertNotCalled(suite.T(), "Next", mock.Anything)
	})

	suite.Run("unreachable url", func() {
		suite.checkerMock.
			On("Check", context.Background(), "https://example.com").
			Once().
			Return(errors.New("connection refused"))

		url, err := suite.svc.ShortenURL(context.Background(), "https://example.com")

		suite.Error(err)
		suite.ErrorIs(err, ErrURLUnreachable)
		suite.Nil(url)
		suite.counterMock.AssertNotCalled(suite.T(), "Next", mock.Anything)
		suite.repoMock.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	suite.Run("existing url consumes no counter value", func() {
		suite.checkerMock.
			On("Check", context.Background(), "https://example.com").
			Once().
			Return(nil)
		suite.repoMock.
			On("GetByOriginalURL", context.Background(), "https://example.com").
			Once().
			Return(&models.URL{ShortCode: "0", OriginalURL: "https://example.com"}, nil)

		url, err := suite.svc.ShortenURL(context.Background(), "https://example.com")

		suite.NoError(err)
		suite.NotNil(url)
		suite.Equal("0", url.ShortCode)
		suite.counterMock.AssertNotCalled(suite.T(), "Next", mock.Anything)
	})

	suite.Run("lookup error", func() {
		suite.checkerMock.
			On("Check", context.Background(), "https://example.com").
			Once().
			Return(nil)
		suite.repoMock.
			On("GetByOriginalURL", context.Background(), "https://example.com").
			Once().
			Return(nil, suite.errUnknown)

		url, err := suite.svc.ShortenURL(context.Background(), "https://example.com")

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(url)
		suite.counterMock.AssertNotCalled(suite.T(), "Next", mock.Anything)
	})

	suite.Run("counter error", func() {
		suite.checkerMock.
			On("Check", context.Background(), "https://example.com").
			Once().
			Return(nil)
		suite.repoMock.
			On("GetByOriginalURL", context.Background(), "https://example.com").
			Once().
			Return(nil, database.ErrURLNotFound)
		suite.counterMock.
			On("Next", context.Background()).
			Once().
			Return(uint64(0), suite.errUnknown)

		url, err := suite.svc.ShortenURL(context.Background(), "https://example.com")

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(url)
		suite.repoMock.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	suite.Run("created", func() {
		suite.checkerMock.
			On("Check", context.Background(), "https://example.com").
			Once().
			Return(nil)
		suite.repoMock.
			On("GetByOriginalURL", context.Background(), "https://example.com").
			Once().
			Return(nil, database.ErrURLNotFound)
		suite.counterMock.
			On("Next", context.Background()).
			Once().
			Return(uint64(0), nil)
		suite.repoMock.
			On("Create", context.Background(), "0", "https://example.com").
			Once().
			Return(&models.URL{ShortCode: "0", OriginalURL: "https://example.com"}, nil)

		url, err := suite.svc.ShortenURL(context.Background(), "https://example.com")

		suite.NoError(err)
		suite.NotNil(url)
		suite.Equal("0", url.ShortCode)
		suite.Equal("https://example.com", url.OriginalURL)
	})

	suite.Run("conflict race resolved with winner's record", func() {
		suite.checkerMock.
			On("Check", context.Background(), "https://example.com").
			Once().
			Return(nil)
		suite.repoMock.
			On("GetByOriginalURL", context.Background(), "https://example.com").
			Once().
			Return(nil, database.ErrURLNotFound)
		suite.counterMock.
			On("Next", context.Background()).
			Once().
			Return(uint64(1), nil)
		suite.repoMock.
			On("Create", context.Background(), "1", "https://example.com").
			Once().
			Return(nil, database.ErrURLExists)
		suite.repoMock.
			On("GetByOriginalURL", context.Background(), "https://example.com").
			Once().
			Return(&models.URL{ShortCode: "0", OriginalURL: "https://example.com"}, nil)

		url, err := suite.svc.ShortenURL(context.Background(), "https://example.com")

		suite.NoError(err)
		suite.NotNil(url)
		suite.Equal("0", url.ShortCode)
	})

	suite.Run("fetch after conflict fails", func() {
		suite.checkerMock.
			On("Check", context.Background(), "https://example.com").
			Once().
			Return(nil)
		suite.repoMock.
			On("GetByOriginalURL", context.Background(), "https://example.com").
			Once().
			Return(nil, database.ErrURLNotFound)
		suite.counterMock.
			On("Next", context.Background()).
			Once().
			Return(uint64(1), nil)
		suite.repoMock.
			On("Create", context.Background(), "1", "https://example.com").
			Once().
			Return(nil, database.ErrURLExists)
		suite.repoMock.
			On("GetByOriginalURL", context.Background(), "https://example.com").
			Once().
			Return(nil, suite.errUnknown)

		url, err := suite.svc.ShortenURL(context.Background(), "https://example.com")

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(url)
	})
}

func (suite *URLServiceTestSuite) TestResolveShortCode() {
	suite.Run("url not found", func() {
		suite.repoMock.
			On("GetByShortCode", context.Background(), "0").
			Once().
			Return(nil, database.ErrURLNotFound)

		url, err := suite.svc.ResolveShortCode(context.Background(), "0")

		suite.Error(err)
		suite.ErrorIs(err, database.ErrURLNotFound)
		suite.Nil(url)
	})

	suite.Run("success", func() {
		suite.repoMock.
			On("GetByShortCode", context.Background(), "0").
			Once().
			Return(&models.URL{ShortCode: "0", OriginalURL: "https://example.com"}, nil)

		url, err := suite.svc.ResolveShortCode(context.Background(), "0")

		suite.NoError(err)
		suite.NotNil(url)
		suite.Equal("https://example.com", url.OriginalURL)
	})
}

func TestURLService(t *testing.T) {
	suite.Run(t, new(URLServiceTestSuite))
}
