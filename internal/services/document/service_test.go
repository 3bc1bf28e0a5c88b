package document

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/permit-compliance/constants"
	"github.com/joseph-ayodele/permit-compliance/internal/async"
	"github.com/joseph-ayodele/permit-compliance/internal/common"
	"github.com/joseph-ayodele/permit-compliance/internal/extract"
	"github.com/joseph-ayodele/permit-compliance/internal/llm"
	"github.com/joseph-ayodele/permit-compliance/internal/pipeline"
	"github.com/joseph-ayodele/permit-compliance/internal/repository"
	"github.com/joseph-ayodele/permit-compliance/internal/standards"
)

type fixture struct {
	svc   *Service
	store *repository.SQLiteStore
}

func newFixture(t *testing.T, text string, opts ...Option) fixture {
	t.Helper()
	store, err := repository.OpenSQLite(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tx := extract.TextExtractorFunc(func(context.Context, []byte, string) (extract.TextExtractionResult, error) {
		return extract.TextExtractionResult{Text: text, Method: constants.MethodPDFText}, nil
	})
	upload := pipeline.NewUploadStage(store.Documents(), tx, nil, nil)
	check := pipeline.NewComplianceStage(store.Documents(), standards.Default(), nil, nil, nil)
	svc := NewService(store.Documents(), store.Reviews(), upload, check, nil, opts...)
	return fixture{svc: svc, store: store}
}

func as(user string, roles ...string) context.Context {
	ctx := common.WithUserID(context.Background(), user)
	return common.WithRoles(ctx, roles)
}

func (f fixture) upload(t *testing.T, user string, body string) uuid.UUID {
	t.Helper()
	doc, err := f.svc.Upload(as(user), UploadRequest{FileName: "plan.pdf", MediaType: constants.MediaTypePDF, Data: []byte(body)})
	require.NoError(t, err)
	return doc.ID
}

func TestService_RequiresCaller(t *testing.T) {
	f := newFixture(t, "x")
	_, err := f.svc.List(context.Background())
	assert.True(t, errors.Is(err, common.ErrUnauthorized))
}

func TestService_OwnerOnlyAccess(t *testing.T) {
	f := newFixture(t, "Room 2.7m")
	id := f.upload(t, "alice", "a")

	_, err := f.svc.Get(as("alice"), id)
	require.NoError(t, err)

	_, err = f.svc.Get(as("bob"), id)
	assert.True(t, errors.Is(err, common.ErrForbidden))
	_, err = f.svc.Download(as("bob"), id)
	assert.True(t, errors.Is(err, common.ErrForbidden))
	assert.True(t, errors.Is(f.svc.Delete(as("bob"), id), common.ErrForbidden))
	_, err = f.svc.CheckCompliance(as("bob"), id)
	assert.True(t, errors.Is(err, common.ErrForbidden))

	// admins still cannot read someone else's document
	_, err = f.svc.Get(as("root", constants.RoleAdmin), id)
	assert.True(t, errors.Is(err, common.ErrForbidden))

	_, err = f.svc.Get(as("alice"), uuid.New())
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestService_DownloadAndDelete(t *testing.T) {
	f := newFixture(t, "Room 2.7m")
	id := f.upload(t, "alice", "%PDF-plan")

	file, err := f.svc.Download(as("alice"), id)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-plan"), file.Data)
	assert.Equal(t, "plan.pdf", file.FileName)

	require.NoError(t, f.svc.Delete(as("alice"), id))
	_, err = f.svc.Get(as("alice"), id)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestService_CheckComplianceStoresResult(t *testing.T) {
	f := newFixture(t, "Bedroom 2.2m with ventilation and fire doors")
	id := f.upload(t, "alice", "a")

	res, err := f.svc.CheckCompliance(as("alice"), id)
	require.NoError(t, err)
	require.Len(t, res.Issues, 2)
	assert.Contains(t, res.Issues[0], "2.2m")
	assert.Equal(t, llm.FallbackNotice, res.Issues[1])

	doc, stored, err := f.svc.LatestCompliance(as("alice"), id)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.True(t, res.Equivalent(stored))
}

func TestService_CheckWithoutTextIsPrecondition(t *testing.T) {
	f := newFixture(t, "")
	id := f.upload(t, "alice", "a")

	_, err := f.svc.CheckCompliance(as("alice"), id)
	assert.True(t, errors.Is(err, common.ErrPrecondition))
}

func TestService_Reviews(t *testing.T) {
	f := newFixture(t, "Room 2.7m")
	id := f.upload(t, "alice", "a")

	_, err := f.svc.AddReview(as("alice"), id, ReviewRequest{Status: "approved"})
	assert.True(t, errors.Is(err, common.ErrInvalidInput), "owner cannot review")

	_, err = f.svc.AddReview(as("bob"), id, ReviewRequest{Status: "maybe"})
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	_, err = f.svc.AddReview(as("bob"), id, ReviewRequest{Status: "needs_revision", Comments: "add stair section"})
	require.NoError(t, err)
	doc, err := f.svc.Get(as("alice"), id)
	require.NoError(t, err)
	assert.Equal(t, constants.DocumentStatusPending, doc.Status, "needs_revision leaves status alone")

	_, err = f.svc.AddReview(as("carol"), id, ReviewRequest{Status: "rejected", Comments: "wrong site", ReviewerName: "Carol"})
	require.NoError(t, err)
	doc, err = f.svc.Get(as("alice"), id)
	require.NoError(t, err)
	assert.Equal(t, constants.DocumentStatusRejected, doc.Status)
	require.NotNil(t, doc.RejectionReason)
	assert.Equal(t, "wrong site", *doc.RejectionReason)

	list, err := f.svc.ListReviews(as("alice"), id)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = f.svc.ListReviews(as("bob"), id)
	assert.True(t, errors.Is(err, common.ErrForbidden))
	list, err = f.svc.ListReviews(as("root", constants.RoleAdmin), id)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestService_UpdateStatus(t *testing.T) {
	f := newFixture(t, "Room 2.7m")
	id := f.upload(t, "alice", "a")

	_, err := f.svc.UpdateStatus(as("bob"), id, StatusRequest{Status: "approved"})
	assert.True(t, errors.Is(err, common.ErrForbidden))

	doc, err := f.svc.UpdateStatus(as("root", constants.RoleAdmin), id, StatusRequest{Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, constants.DocumentStatusApproved, doc.Status)

	_, err = f.svc.UpdateStatus(as("alice"), id, StatusRequest{Status: ""})
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}

type recordingQueue struct{ jobs []async.Job }

func (q *recordingQueue) Enqueue(_ context.Context, job async.Job) error {
	q.jobs = append(q.jobs, job)
	return nil
}
func (q *recordingQueue) Shutdown(context.Context) {}

func TestService_AutoCheckQueuesNewUploadsOnly(t *testing.T) {
	q := &recordingQueue{}
	f := newFixture(t, "Room 2.7m", WithAutoCheck(q))

	id := f.upload(t, "alice", "a")
	f.upload(t, "alice", "a")

	require.Len(t, q.jobs, 1)
	assert.Equal(t, id, q.jobs[0].DocumentID)
}

var _ async.Checker = (*pipeline.ComplianceStage)(nil)
