package automation

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/manya-08/ai-workflow-automator-project/internal/logging"
	"github.com/manya-08/ai-workflow-automator-project/internal/models"
	"github.com/manya-08/ai-workflow-automator-project/internal/repository"
)

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(ctx context.Context, specs []models.ActionSpec) []models.ActionResult {
	args := m.Called(ctx, specs)
	return args.Get(0).([]models.ActionResult)
}

// failingStore satisfies repository.WorkflowStore and fails every write.
type failingStore struct{}

func (failingStore) Save(ctx context.Context, record *models.WorkflowRecord) error {
	return errors.New("disk I/O error")
}
func (failingStore) Get(ctx context.Context, id int64) (*models.WorkflowRecord, error) {
	return nil, repository.ErrNotFound
}
func (failingStore) List(ctx context.Context, limit int) ([]*models.WorkflowRecord, error) {
	return nil, nil
}
func (failingStore) Ping(ctx context.Context) error { return nil }
func (failingStore) Close() error                   { return nil }

func newService(t *testing.T, c *recordingCompleter, store repository.WorkflowStore, d Dispatcher) *Service {
	t.Helper()
	if store == nil {
		s, err := repository.NewSQLiteWorkflowStore(context.Background(), filepath.Join(t.TempDir(), "wf.db"))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		store = s
	}
	log := logging.NewNop()
	return NewService(NewInterpreter(c, log), store, d, log)
}

func TestAutomate_InterpretsSavesAndDispatches(t *testing.T) {
	d := new(mockDispatcher)
	want := []models.ActionResult{{ActionType: "send_email", Success: true, Message: "Email sent successfully to a@b.com."}}
	d.On("Dispatch", mock.Anything, mock.MatchedBy(func(specs []models.ActionSpec) bool {
		return len(specs) == 1 && specs[0].Type == "send_email" && specs[0].Detail("recipient") == "a@b.com"
	})).Return(want)

	svc := newService(t, &recordingCompleter{reply: emailWorkflow}, nil, d)
	out, err := svc.Automate(context.Background(), "email a@b.com")
	require.NoError(t, err)

	assert.Equal(t, SuccessMessage, out.Message)
	assert.Equal(t, "email a@b.com", out.OriginalCommand)
	assert.Equal(t, want, out.ExecutionResults)
	assert.Equal(t, int64(1), out.WorkflowID)
	d.AssertExpectations(t)

	stored, err := svc.Workflow(context.Background(), out.WorkflowID)
	require.NoError(t, err)
	assert.Equal(t, "email a@b.com", stored.Command)
	assert.Equal(t, models.StatusActive, stored.Status)

	history, err := svc.History(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestAutomate_NoActionsYieldsSyntheticResult(t *testing.T) {
	for _, reply := range []string{
		`{"trigger":{"type":"manual_trigger","details":{}}}`,
		`{"trigger":{"type":"manual_trigger","details":{}},"actions":{"type":"send_email"}}`,
	} {
		d := new(mockDispatcher)
		svc := newService(t, &recordingCompleter{reply: reply}, nil, d)
		out, err := svc.Automate(context.Background(), "do nothing")
		require.NoError(t, err)
		assert.Equal(t, []models.ActionResult{models.NoActionsResult()}, out.ExecutionResults)
		d.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
	}
}

func TestAutomate_EmptyActionListDispatchesNothing(t *testing.T) {
	d := new(mockDispatcher)
	d.On("Dispatch", mock.Anything, []models.ActionSpec{}).Return([]models.ActionResult{})

	svc := newService(t, &recordingCompleter{reply: `{"trigger":{},"actions":[]}`}, nil, d)
	out, err := svc.Automate(context.Background(), "cmd")
	require.NoError(t, err)
	assert.Empty(t, out.ExecutionResults)
	d.AssertExpectations(t)
}

func TestAutomate_FailedInterpretationStoresNothing(t *testing.T) {
	d := new(mockDispatcher)
	svc := newService(t, &recordingCompleter{reply: "not json"}, nil, d)

	_, err := svc.Automate(context.Background(), "cmd")
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindResponseParse, e.Kind)

	history, err := svc.History(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, history)
	d.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestAutomate_PersistenceFailureSkipsDispatch(t *testing.T) {
	d := new(mockDispatcher)
	svc := newService(t, &recordingCompleter{reply: emailWorkflow}, failingStore{}, d)

	_, err := svc.Automate(context.Background(), "email a@b.com")
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindPersistence, e.Kind)
	assert.Equal(t, http.StatusInternalServerError, e.HTTPStatus())
	assert.Equal(t, "disk I/O error", e.Details)
	assert.NotNil(t, e.Workflow)
	assert.Equal(t, emailWorkflow, e.RawResponse)
	d.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}
