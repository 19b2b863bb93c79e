package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"loteriadash/internal/dataprocessing"
	apperrors "loteriadash/internal/errors"
	"loteriadash/internal/shared/testutil"
	api "loteriadash/pkg/contracts/api/v1"
	"loteriadash/pkg/contracts/domain"
	"loteriadash/pkg/contracts/events"
)

const datasetName = "premio_mayor_loteria_medellin.csv"

// MockPublisher records dataset events
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishDataset(ctx context.Context, msgType events.MessageType, event events.DatasetEvent) {
	m.Called(msgType, event)
}

func newDatasetService(t *testing.T, dir string, opts ...DatasetOption) *DatasetService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	cache := dataprocessing.NewCache(dataprocessing.NewLoader(dir, datasetName, logger, nil))
	return NewDatasetService(cache, nil, logger, opts...)
}

func cleanService(t *testing.T, opts ...DatasetOption) *DatasetService {
	t.Helper()
	return newDatasetService(t, testutil.WriteDataset(t, datasetName, testutil.CleanDrawsCSV), opts...)
}

func requireAppError(t *testing.T, err error, errType apperrors.ErrorType) *apperrors.AppError {
	t.Helper()
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, errType, appErr.Type)
	return appErr
}

func TestDatasetService_MissingDataset(t *testing.T) {
	dir := testutil.WriteDataset(t, "otro.csv", testutil.CleanDrawsCSV)
	svc := newDatasetService(t, dir)

	_, err := svc.Table(context.Background())
	appErr := requireAppError(t, err, apperrors.ErrTypeNotFound)

	assert.Equal(t, apperrors.TypeDatasetNotFound, appErr.Context["problem_type"])
	assert.Contains(t, appErr.Context["searched_path"], datasetName)
	assert.Equal(t, []string{"otro.csv"}, appErr.Context["available_files"])
}

func TestDatasetService_MissingColumns(t *testing.T) {
	dir := testutil.WriteDataset(t, datasetName, "fecha,sorteo,numero\n2020-01-03,1,1111\n")
	svc := newDatasetService(t, dir)

	_, err := svc.Summary(context.Background(), dataprocessing.Criteria{})
	appErr := requireAppError(t, err, apperrors.ErrTypeParsing)
	assert.Contains(t, appErr.Context["missing_columns"], "series")
	assert.True(t, errors.Is(err, dataprocessing.ErrMissingColumns))
}

func TestDatasetService_Summary(t *testing.T) {
	svc := cleanService(t)

	summary, err := svc.Summary(context.Background(), dataprocessing.Criteria{})
	require.NoError(t, err)
	assert.Equal(t, 6, summary.Summary.TotalDraws)
	assert.Equal(t, 6, summary.Report.OutputRows)
	assert.False(t, summary.Filtered)
	assert.NotEmpty(t, summary.Columns)

	filtered, err := svc.Summary(context.Background(), dataprocessing.Criteria{Years: []int{2021}})
	require.NoError(t, err)
	assert.Equal(t, 2, filtered.Summary.TotalDraws)
	assert.True(t, filtered.Filtered)
}

func TestDatasetService_Records(t *testing.T) {
	svc := cleanService(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		query     api.RecordsQuery
		wantTotal int
		wantLen   int
		wantFirst int
		wantPages int
	}{
		{
			name:      "defaults",
			query:     api.RecordsQuery{},
			wantTotal: 6, wantLen: 6, wantFirst: 4500, wantPages: 1,
		},
		{
			name:      "second page",
			query:     api.RecordsQuery{PaginationRequest: api.PaginationRequest{Page: 2, PageSize: 4}},
			wantTotal: 6, wantLen: 2, wantFirst: 4504, wantPages: 2,
		},
		{
			name:      "descending",
			query:     api.RecordsQuery{Order: "desc", PaginationRequest: api.PaginationRequest{Page: 1, PageSize: 2}},
			wantTotal: 6, wantLen: 2, wantFirst: 4505, wantPages: 3,
		},
		{
			name:      "filtered by year",
			query:     api.RecordsQuery{FilterRequest: api.FilterRequest{Years: []int{2021}}},
			wantTotal: 2, wantLen: 2, wantFirst: 4504, wantPages: 1,
		},
		{
			name:      "date range",
			query:     api.RecordsQuery{DateRangeRequest: api.DateRangeRequest{From: "2020-01-10", To: "2020-01-17"}},
			wantTotal: 2, wantLen: 2, wantFirst: 4501, wantPages: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.Records(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, page.Total)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			require.Len(t, page.Records, tt.wantLen)
			assert.Equal(t, tt.wantFirst, page.Records[0].DrawSequence)
		})
	}
}

func TestDatasetService_RecordsBeyondLastPage(t *testing.T) {
	svc := cleanService(t)

	page, err := svc.Records(context.Background(), api.RecordsQuery{
		PaginationRequest: api.PaginationRequest{Page: 9, PageSize: 5},
	})
	require.NoError(t, err)
	assert.Empty(t, page.Records)
	assert.Equal(t, 6, page.Total)
}

func TestCriteria_InvalidRange(t *testing.T) {
	_, err := Criteria(api.FilterRequest{}, api.DateRangeRequest{From: "05/01/2020"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Criteria(api.FilterRequest{}, api.DateRangeRequest{From: "2021-01-01", To: "2020-01-01"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	svc := cleanService(t)
	_, err = svc.Records(context.Background(), api.RecordsQuery{
		DateRangeRequest: api.DateRangeRequest{From: "2021-01-01", To: "2020-01-01"},
	})
	requireAppError(t, err, apperrors.ErrTypeValidation)
}

func TestDatasetService_ReloadPublishesEvents(t *testing.T) {
	dir := testutil.WriteDataset(t, datasetName, testutil.CleanDrawsCSV)
	pub := &MockPublisher{}
	pub.On("PublishDataset", events.MessageTypeDatasetReloaded, mock.MatchedBy(func(e events.DatasetEvent) bool {
		return e.Rows == 6
	})).Once()
	svc := newDatasetService(t, dir, WithPublisher(pub))

	report, err := svc.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, report.OutputRows)
	pub.AssertExpectations(t)
}

func TestDatasetService_ReloadFailurePublishesError(t *testing.T) {
	pub := &MockPublisher{}
	pub.On("PublishDataset", events.MessageTypeDatasetError, mock.Anything).Once()
	svc := newDatasetService(t, t.TempDir(), WithPublisher(pub))

	_, err := svc.Reload(context.Background())
	requireAppError(t, err, apperrors.ErrTypeNotFound)
	pub.AssertExpectations(t)
}

func TestDatasetService_SourceChanged(t *testing.T) {
	pub := &MockPublisher{}
	pub.On("PublishDataset", events.MessageTypeDatasetInvalidated, events.DatasetEvent{
		SourcePath: "/data/x.csv",
		Reason:     "WRITE",
	}).Once()
	svc := cleanService(t, WithPublisher(pub))

	svc.SourceChanged("/data/x.csv", "WRITE")
	pub.AssertExpectations(t)
}

func TestDatasetService_Statistics(t *testing.T) {
	svc := cleanService(t)
	ctx := context.Background()
	all := dataprocessing.Criteria{}

	freq, err := svc.Frequencies(ctx, all, domain.ColNumero, 1)
	require.NoError(t, err)
	require.Len(t, freq, 1)
	assert.Equal(t, "1111", freq[0].Value)
	assert.Equal(t, 2, freq[0].Count)

	outliers, err := svc.Outliers(ctx, all, domain.ColNumero)
	require.NoError(t, err)
	assert.Equal(t, 6, outliers.Count)

	groups, err := svc.GroupStats(ctx, all, api.GroupStatsQuery{GroupBy: domain.ColAnio, Value: domain.ColNumero})
	require.NoError(t, err)
	assert.Len(t, groups.Groups, 2)

	desc, err := svc.Describe(ctx, all)
	require.NoError(t, err)
	assert.NotEmpty(t, desc)

	missing, err := svc.Missing(ctx)
	require.NoError(t, err)
	assert.NotNil(t, missing)

	_, err = svc.Trend(ctx, all, "no_existe")
	requireAppError(t, err, apperrors.ErrTypeValidation)
	assert.ErrorIs(t, err, domain.ErrUnknownColumn)
}

func TestDatasetService_Charts(t *testing.T) {
	svc := cleanService(t)
	ctx := context.Background()

	results, err := svc.Charts(ctx, dataprocessing.Criteria{})
	require.NoError(t, err)
	assert.NotEmpty(t, results)

	_, err = svc.Chart(ctx, dataprocessing.Criteria{}, "pastel-de-queso")
	appErr := requireAppError(t, err, apperrors.ErrTypeNotFound)
	assert.Equal(t, apperrors.TypeChartNotFound, appErr.Context["problem_type"])

	var buf bytes.Buffer
	require.NoError(t, svc.ChartPNG(ctx, dataprocessing.Criteria{}, "parity", &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestDatasetService_SaveChartsNeedsDirectory(t *testing.T) {
	svc := cleanService(t)
	_, _, err := svc.SaveCharts(context.Background())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDatasetService_WriteExport(t *testing.T) {
	svc := cleanService(t)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, svc.WriteExport(ctx, &buf, "csv", dataprocessing.Criteria{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}))

	err := svc.WriteExport(ctx, &buf, "pdf", dataprocessing.Criteria{})
	requireAppError(t, err, apperrors.ErrTypeValidation)
}
