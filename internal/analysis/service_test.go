package analysis

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zuschusscheck-web/internal/backend"
	"zuschusscheck-web/internal/resultstore"
)

type fakeAnalyzer struct {
	calls int
	body  string
	res   backend.AnalysisResult
	err   error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _, _ string, r io.Reader) (backend.AnalysisResult, error) {
	f.calls++
	b, _ := io.ReadAll(r)
	f.body = string(b)
	return f.res, f.err
}

func TestSubmitStoresResult(t *testing.T) {
	res, err := backend.ParseAnalysisResult([]byte(`{"analysis_id":"a-1","score":25,"risk_level":"CRITICAL"}`))
	require.NoError(t, err)
	api := &fakeAnalyzer{res: res}
	sess := resultstore.NewSession(resultstore.NewMemoryStore(), "visitor-1")

	got, err := NewService(api).Submit(context.Background(), sess, UploadFile{Name: "plan.pdf", ContentType: "application/pdf", Body: strings.NewReader("%PDF")})
	require.NoError(t, err)
	assert.Equal(t, 25, got.Score)
	assert.Equal(t, "%PDF", api.body)

	id, raw, err := sess.LastResult(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a-1", id)
	assert.JSONEq(t, `{"analysis_id":"a-1","score":25,"risk_level":"CRITICAL"}`, string(raw))
}

func TestSubmitFailureLeavesStoreUntouched(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		kind    error
		message string
	}{
		{
			name:    "backend detail",
			err:     &backend.APIError{StatusCode: 400, Detail: "Could not extract sufficient text from file."},
			kind:    ErrAnalysisFailed,
			message: "Could not extract sufficient text from file.",
		},
		{
			name:    "status only",
			err:     &backend.APIError{StatusCode: 502},
			kind:    ErrAnalysisFailed,
			message: GenericFailureMessage,
		},
		{
			name:    "bad body",
			err:     backend.ErrInvalidResponse,
			kind:    ErrAnalysisFailed,
			message: GenericFailureMessage,
		},
		{
			name:    "transport",
			err:     errors.New("dial tcp: connection refused"),
			kind:    ErrUploadFailed,
			message: GenericFailureMessage,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := resultstore.NewMemoryStore()
			sess := resultstore.NewSession(store, "visitor-1")

			_, err := NewService(&fakeAnalyzer{err: tc.err}).Submit(context.Background(), sess, UploadFile{Name: "plan.pdf", ContentType: "application/pdf", Body: strings.NewReader("x")})
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.kind)
			assert.Equal(t, tc.message, Message(err))
			assert.Equal(t, 0, store.Len())
		})
	}
}

func TestSubmitRequiresResultID(t *testing.T) {
	store := resultstore.NewMemoryStore()
	sess := resultstore.NewSession(store, "visitor-1")
	api := &fakeAnalyzer{res: backend.AnalysisResult{Score: 40, Raw: []byte(`{"score":40}`)}}

	_, err := NewService(api).Submit(context.Background(), sess, UploadFile{Name: "plan.pdf", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrAnalysisFailed)
	assert.Equal(t, 0, store.Len())
}

func TestProgressStagesAreOrdered(t *testing.T) {
	stages := ProgressStages()
	require.NotEmpty(t, stages)
	assert.Equal(t, "Dokument wird verarbeitet ✓", stages[0].Label)
	for i := 1; i < len(stages); i++ {
		assert.Greater(t, stages[i].After, stages[i-1].After)
	}
}
