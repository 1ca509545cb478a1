package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/jobsite-tracker/internal/common"
	"github.com/joseph-ayodele/jobsite-tracker/internal/dedupe"
	"github.com/joseph-ayodele/jobsite-tracker/internal/entity"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractText(_ context.Context, _ []byte, _ string) (string, error) {
	return f.text, f.err
}

func (f *fakeExtractor) Close() error { return nil }

type fakeReceipts struct {
	existing []*entity.Receipt
	listErr  error
}

func (f *fakeReceipts) CreateReceipt(context.Context, *entity.Receipt) error { return nil }
func (f *fakeReceipts) DeleteReceipt(context.Context, uuid.UUID) error       { return nil }

func (f *fakeReceipts) ListReceiptsByOwner(context.Context, uuid.UUID) ([]*entity.Receipt, error) {
	return f.existing, f.listErr
}

func (f *fakeReceipts) ListReceiptsByJob(context.Context, uuid.UUID) ([]*entity.Receipt, error) {
	return f.existing, f.listErr
}

func newTestScanner(text string, receipts *fakeReceipts) *Scanner {
	s := NewScanner(&fakeExtractor{text: text}, nil, receipts, slog.Default())
	s.Parser.Now = func() time.Time { return time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC) }
	return s
}

const homeDepotText = `HOME DEPOT #4512
123 CONTRACTOR WAY
03/08/2025
LUMBER 2X4          45.00
DECK SCREWS         12.99
TOTAL              $57.99`

func TestScanHappyPath(t *testing.T) {
	s := newTestScanner(homeDepotText, &fakeReceipts{})
	ownerID := uuid.New()

	got, err := s.Scan(context.Background(), ownerID, nil, []byte("not-a-real-png"), "image/png")
	require.NoError(t, err)

	// The parser echoes the matched line verbatim, not a cleaned-up name.
	assert.Equal(t, "HOME DEPOT #4512", got.Candidate.Vendor)
	assert.InDelta(t, 57.99, got.Candidate.Amount, 0.001)
	assert.True(t, got.Candidate.DateFound)
	assert.InDelta(t, 0.95, got.Candidate.Confidence, 0.001)
	assert.Equal(t, "Materials", got.Category)
	assert.False(t, got.Refund)
	assert.Empty(t, got.Duplicates)
	assert.Greater(t, got.Readability, 0.5)
}

func TestScanFindsDuplicates(t *testing.T) {
	cat := "Materials"
	twin := &entity.Receipt{
		ID:       uuid.New(),
		Amount:   57.99,
		Vendor:   "Home Depot",
		Category: &cat,
		Date:     time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
	}
	s := newTestScanner(homeDepotText, &fakeReceipts{existing: []*entity.Receipt{twin}})

	got, err := s.Scan(context.Background(), uuid.New(), nil, []byte("x"), "image/png")
	require.NoError(t, err)
	require.Len(t, got.Duplicates, 1)
	assert.Equal(t, twin.ID, got.Duplicates[0].Receipt.ID)
	// Raw line vs stored clean name is a substring match: half vendor
	// weight (0.2) + amount (0.3) + same day (0.2) + category (0.1).
	assert.GreaterOrEqual(t, got.Duplicates[0].Similarity, dedupe.Threshold)
	assert.InDelta(t, 0.8, got.Duplicates[0].Similarity, 0.001)
}

func TestScanDetectsRefund(t *testing.T) {
	text := `REFUND RECEIPT
ACME TOOL CO
03/08/2025
TOTAL $45.00`
	s := newTestScanner(text, &fakeReceipts{})

	got, err := s.Scan(context.Background(), uuid.New(), nil, []byte("x"), "image/png")
	require.NoError(t, err)
	assert.True(t, got.Refund)
}

func TestScanCardPaymentIsNotARefund(t *testing.T) {
	text := `HOME DEPOT #4512
03/08/2025
LUMBER 2X4          45.00
TOTAL              $45.00
PAID BY CREDIT CARD ************1234
ALL RETURNS WITHIN 90 DAYS`
	s := newTestScanner(text, &fakeReceipts{})

	got, err := s.Scan(context.Background(), uuid.New(), nil, []byte("x"), "image/png")
	require.NoError(t, err)
	assert.False(t, got.Refund)
}

func TestScanEmptyTranscription(t *testing.T) {
	s := newTestScanner("   \n\n  ", &fakeReceipts{})

	_, err := s.Scan(context.Background(), uuid.New(), nil, []byte("x"), "image/png")
	assert.ErrorIs(t, err, common.ErrNoText)
}

func TestScanExtractorError(t *testing.T) {
	boom := errors.New("provider unavailable")
	s := NewScanner(&fakeExtractor{err: boom}, nil, &fakeReceipts{}, slog.Default())

	_, err := s.Scan(context.Background(), uuid.New(), nil, []byte("x"), "image/png")
	assert.ErrorIs(t, err, boom)
}

func TestScanSurvivesStoreError(t *testing.T) {
	s := newTestScanner(homeDepotText, &fakeReceipts{listErr: errors.New("db down")})

	got, err := s.Scan(context.Background(), uuid.New(), nil, []byte("x"), "image/png")
	require.NoError(t, err)
	assert.Empty(t, got.Duplicates)
}

type fakeClassifier struct {
	payload []byte
	err     error
}

func (f *fakeClassifier) ClassifyDocument(context.Context, string) ([]byte, error) {
	return f.payload, f.err
}

func TestScanDocument(t *testing.T) {
	payload := []byte(`{"documentType":"permit","title":"Building Permit 2025-114","confidence":0.9}`)
	s := newTestScanner("CITY OF AUSTIN BUILDING PERMIT", &fakeReceipts{})
	s.Classifier = &fakeClassifier{payload: payload}

	got, err := s.ScanDocument(context.Background(), []byte("x"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "permit", got.DocumentType)
	assert.Equal(t, "Building Permit 2025-114", got.Title)
	assert.InDelta(t, 0.9, got.Confidence, 0.001)
}
