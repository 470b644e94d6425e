package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotedesk/quotedesk/internal/search"
	"github.com/quotedesk/quotedesk/internal/upstream"
	_ "github.com/quotedesk/quotedesk/testing"
)

type stubFetcher struct {
	data upstream.QuotationData
	err  error
}

func (f *stubFetcher) GetQuotation(ctx context.Context, id int64) (upstream.QuotationData, error) {
	if f.err != nil {
		return upstream.QuotationData{}, f.err
	}
	return f.data, nil
}

func newTestRouter(t *testing.T, fetcher QuotationFetcher) (chi.Router, *Registry) {
	t.Helper()
	reg := NewRegistry(testDirectory(), search.Options{
		Debounce:  2 * time.Millisecond,
		BlurGrace: 2 * time.Millisecond,
	})
	h := NewHandler(nil, reg, fetcher)
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r, reg
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	return res
}

func decodeView(t *testing.T, res *httptest.ResponseRecorder) draftView {
	t.Helper()
	var v draftView
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &v))
	return v
}

func TestOpenCreateDraft(t *testing.T) {
	r, _ := newTestRouter(t, &stubFetcher{})

	res := doJSON(t, r, http.MethodPost, "/drafts", map[string]any{"mode": "create"})
	require.Equal(t, http.StatusCreated, res.Code)

	v := decodeView(t, res)
	assert.NotEmpty(t, v.SessionID)
	assert.Equal(t, ModeCreate, v.Draft.Mode)
	require.Len(t, v.Draft.Lines, 1)
	assert.Equal(t, 0.0, v.Totals.Total)
}

func TestOpenEditDraftSeedsFromUpstream(t *testing.T) {
	fetcher := &stubFetcher{data: upstream.QuotationData{
		ID:       41,
		Customer: upstream.CustomerPayload{Name: "Asha"},
		Items:    []upstream.QuotationItem{{Product: 9, Name: "Pump", Quantity: 2, UnitPrice: 100}},
		TaxRate:  18,
	}}
	r, _ := newTestRouter(t, fetcher)

	res := doJSON(t, r, http.MethodPost, "/drafts", map[string]any{"mode": "edit", "existing_id": 41})
	require.Equal(t, http.StatusCreated, res.Code)

	v := decodeView(t, res)
	assert.Equal(t, ModeEdit, v.Draft.Mode)
	assert.Equal(t, "Asha", v.Draft.Customer.Name)
	assert.Equal(t, 236.00, v.Totals.Total)
}

func TestOpenEditRequiresExistingID(t *testing.T) {
	r, _ := newTestRouter(t, &stubFetcher{})
	res := doJSON(t, r, http.MethodPost, "/drafts", map[string]any{"mode": "edit"})
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestOpenSeedFailureClosesSession(t *testing.T) {
	r, reg := newTestRouter(t, &stubFetcher{err: errors.New("upstream down")})
	res := doJSON(t, r, http.MethodPost, "/drafts", map[string]any{"mode": "duplicate", "existing_id": 41})
	assert.Equal(t, http.StatusBadGateway, res.Code)
	assert.Zero(t, reg.Len())
}

func TestPatchRecomputesTotals(t *testing.T) {
	r, _ := newTestRouter(t, &stubFetcher{})
	sessID := decodeView(t, doJSON(t, r, http.MethodPost, "/drafts", map[string]any{})).SessionID

	res := doJSON(t, r, http.MethodGet, "/drafts/"+sessID, nil)
	lineID := decodeView(t, res).Draft.Lines[0].ID

	res = doJSON(t, r, http.MethodPost, fmt.Sprintf("/drafts/%s/lines/%s", sessID, lineID), map[string]any{
		"quantity": "2", "unit_price": "100", "percent_discount": "10",
	})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, 180.00, decodeView(t, res).Totals.Total)

	res = doJSON(t, r, http.MethodPost, "/drafts/"+sessID+"/patch", map[string]any{"tax_rate": "18"})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, 212.40, decodeView(t, res).Totals.Total)
}

func TestRemoveLastLineConflicts(t *testing.T) {
	r, _ := newTestRouter(t, &stubFetcher{})
	v := decodeView(t, doJSON(t, r, http.MethodPost, "/drafts", map[string]any{}))

	res := doJSON(t, r, http.MethodPost, fmt.Sprintf("/drafts/%s/lines/%s/remove", v.SessionID, v.Draft.Lines[0].ID), nil)
	assert.Equal(t, http.StatusConflict, res.Code)
}

func TestFieldSearchAndSelect(t *testing.T) {
	r, _ := newTestRouter(t, &stubFetcher{})
	sessID := decodeView(t, doJSON(t, r, http.MethodPost, "/drafts", map[string]any{})).SessionID

	res := doJSON(t, r, http.MethodPost, "/drafts/"+sessID+"/search/customer", map[string]any{"query": "ash"})
	require.Equal(t, http.StatusOK, res.Code)

	// Poll until the debounced fetch lands.
	require.Eventually(t, func() bool {
		res := doJSON(t, r, http.MethodGet, "/drafts/"+sessID+"/search/customer", nil)
		var st search.State[upstream.Customer]
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &st))
		return !st.Loading && len(st.Results) == 1
	}, 2*time.Second, 2*time.Millisecond)

	res = doJSON(t, r, http.MethodPost, "/drafts/"+sessID+"/search/customer/select", map[string]any{"index": 0})
	require.Equal(t, http.StatusOK, res.Code)
	v := decodeView(t, res)
	assert.Equal(t, "Asha", v.Draft.Customer.Name)
	require.NotNil(t, v.Draft.Customer.ID)
}

func TestLineSearchUnknownLine(t *testing.T) {
	r, _ := newTestRouter(t, &stubFetcher{})
	sessID := decodeView(t, doJSON(t, r, http.MethodPost, "/drafts", map[string]any{})).SessionID

	res := doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/drafts/%s/lines/%s/search", sessID, "00000000-0000-0000-0000-000000000001"),
		map[string]any{"query": "pump"})
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestToggleTermEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, &stubFetcher{})
	sessID := decodeView(t, doJSON(t, r, http.MethodPost, "/drafts", map[string]any{})).SessionID

	res := doJSON(t, r, http.MethodPost, "/drafts/"+sessID+"/terms/3", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, []int64{3}, decodeView(t, res).Draft.Terms)

	res = doJSON(t, r, http.MethodPost, "/drafts/"+sessID+"/terms/3", nil)
	assert.Empty(t, decodeView(t, res).Draft.Terms)
}

func TestUnknownSessionIs404(t *testing.T) {
	r, _ := newTestRouter(t, &stubFetcher{})
	res := doJSON(t, r, http.MethodGet, "/drafts/nope", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
}
