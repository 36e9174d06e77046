package linear

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineargate/lineargate/internal/graphql"
	"github.com/lineargate/lineargate/internal/refcache"
)

// fakeExec is an in-memory transport: it matches each GraphQL document
// against registered response fragments and records every call.
type fakeExec struct {
	mu        sync.Mutex
	calls     []execCall
	responses map[string]string // document substring -> data JSON
}

type execCall struct {
	doc  string
	vars map[string]any
}

func newFakeExec() *fakeExec {
	return &fakeExec{responses: make(map[string]string)}
}

func (f *fakeExec) on(fragment, data string) { f.responses[fragment] = data }

func (f *fakeExec) ExecuteWithRetry(ctx context.Context, cred graphql.Credential, doc string, vars map[string]any, policy graphql.RetryPolicy) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, execCall{doc: doc, vars: vars})
	f.mu.Unlock()

	for fragment, data := range f.responses {
		if strings.Contains(doc, fragment) {
			return json.RawMessage(data), nil
		}
	}
	return nil, fmt.Errorf("no canned response for document: %s", doc)
}

func (f *fakeExec) callCount(fragment string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.Contains(c.doc, fragment) {
			n++
		}
	}
	return n
}

func (f *fakeExec) lastVars(fragment string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if strings.Contains(f.calls[i].doc, fragment) {
			return f.calls[i].vars
		}
	}
	return nil
}

// fakeCreds is a static credential source.
type fakeCreds struct {
	mu sync.Mutex
	id string
}

func (f *fakeCreds) Identity() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id
}

func (f *fakeCreds) setIdentity(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.id = id
}

func (f *fakeCreds) Credential(ctx context.Context) (graphql.Credential, error) {
	return graphql.Credential{Value: "token", Bearer: true}, nil
}

func (f *fakeCreds) ForceRefresh(ctx context.Context) (graphql.Credential, error) {
	return graphql.Credential{Value: "token", Bearer: true}, nil
}

func newTestClient(exec *fakeExec, creds *fakeCreds) *Client {
	return &Client{
		exec:   exec,
		creds:  creds,
		cache:  refcache.New(),
		policy: graphql.DefaultRetryPolicy(),
		logger: slog.Default(),
	}
}

// --- Name resolution ---

func TestResolveTeam_ExactNameMatch(t *testing.T) {
	exec := newFakeExec()
	exec.on("teams {", `{"teams":{"nodes":[
		{"id":"T1","name":"Product","key":"PRD"},
		{"id":"T2","name":"Platform","key":"PLT"}]}}`)
	c := newTestClient(exec, &fakeCreds{id: "user-1"})

	team, err := c.resolveTeam(context.Background(), "Product")
	require.NoError(t, err)
	assert.Equal(t, "T1", team.ID)
}

func TestResolveTeam_MissMentionsName(t *testing.T) {
	exec := newFakeExec()
	exec.on("teams {", `{"teams":{"nodes":[{"id":"T1","name":"Product","key":"PRD"}]}}`)
	c := newTestClient(exec, &fakeCreds{id: "user-1"})

	_, err := c.resolveTeam(context.Background(), "Nonexistent")

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "team", nf.Kind)
	assert.Contains(t, err.Error(), "Nonexistent")
}

func TestResolveTeam_AmbiguousNameTakesFirstMatch(t *testing.T) {
	exec := newFakeExec()
	exec.on("teams {", `{"teams":{"nodes":[
		{"id":"T1","name":"Product","key":"PRD"},
		{"id":"T9","name":"Product","key":"PRD2"}]}}`)
	c := newTestClient(exec, &fakeCreds{id: "user-1"})

	team, err := c.resolveTeam(context.Background(), "Product")
	require.NoError(t, err)
	assert.Equal(t, "T1", team.ID)
}

// --- Reference caching ---

func TestTeams_SecondCallServedFromCache(t *testing.T) {
	exec := newFakeExec()
	exec.on("teams {", `{"teams":{"nodes":[{"id":"T1","name":"Product","key":"PRD"}]}}`)
	c := newTestClient(exec, &fakeCreds{id: "user-1"})

	_, err := c.Teams(context.Background())
	require.NoError(t, err)
	_, err = c.Teams(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, exec.callCount("teams {"))
}

func TestIdentityChangeClearsReferenceCache(t *testing.T) {
	exec := newFakeExec()
	exec.on("teams {", `{"teams":{"nodes":[{"id":"T1","name":"Product","key":"PRD"}]}}`)
	creds := &fakeCreds{id: "user-1"}
	c := newTestClient(exec, creds)

	_, err := c.Teams(context.Background())
	require.NoError(t, err)

	creds.setIdentity("user-2")
	_, err = c.Teams(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, exec.callCount("teams {"),
		"an identity switch must refetch reference data")
}

// --- Issues ---

const fourStateIssues = `{"issues":{"nodes":[
	{"id":"I1","identifier":"PRD-1","title":"done","state":{"id":"S1","name":"Done","type":"completed"}},
	{"id":"I2","identifier":"PRD-2","title":"dropped","state":{"id":"S2","name":"Canceled","type":"canceled"}},
	{"id":"I3","identifier":"PRD-3","title":"someday","state":{"id":"S3","name":"Backlog","type":"backlog"}},
	{"id":"I4","identifier":"PRD-4","title":"active","state":{"id":"S4","name":"In Progress","type":"started"}}]}}`

func TestListIssues_DefaultsHideInactiveStates(t *testing.T) {
	exec := newFakeExec()
	exec.on("issues(filter:", fourStateIssues)
	c := newTestClient(exec, &fakeCreds{id: "user-1"})

	issues, err := c.ListIssues(context.Background(), ListIssuesParams{})
	require.NoError(t, err)

	require.Len(t, issues, 1)
	assert.Equal(t, "PRD-4", issues[0].Identifier)
	assert.Equal(t, "started", issues[0].StateType)

	// The same exclusion goes upstream as a filter variable.
	vars := exec.lastVars("issues(filter:")
	require.NotNil(t, vars["filter"])
}

func TestListIssues_IncludeAllKeepsEveryState(t *testing.T) {
	exec := newFakeExec()
	exec.on("issues(filter:", fourStateIssues)
	c := newTestClient(exec, &fakeCreds{id: "user-1"})

	issues, err := c.ListIssues(context.Background(), ListIssuesParams{IncludeAll: true})
	require.NoError(t, err)
	assert.Len(t, issues, 4)
}

func TestListIssues_TeamNameResolvesIntoFilter(t *testing.T) {
	exec := newFakeExec()
	exec.on("teams {", `{"teams":{"nodes":[{"id":"T1","name":"Product","key":"PRD"}]}}`)
	exec.on("issues(filter:", fourStateIssues)
	c := newTestClient(exec, &fakeCreds{id: "user-1"})

	_, err := c.ListIssues(context.Background(), ListIssuesParams{Team: "Product"})
	require.NoError(t, err)

	vars := exec.lastVars("issues(filter:")
	filter := vars["filter"].(map[string]any)
	team := filter["team"].(map[string]any)["id"].(map[string]any)
	assert.Equal(t, "T1", team["eq"])
}

func TestGetIssue_FlattensAndCarriesComments(t *testing.T) {
	exec := newFakeExec()
	exec.on("issue(id:", `{"issue":{
		"id":"I1","identifier":"PRD-1","title":"Ship it","priority":2,
		"state":{"id":"S1","name":"In Progress","type":"started"},
		"team":{"id":"T1","name":"Product","key":"PRD"},
		"assignee":{"id":"U1","name":"Sam"},
		"labels":{"nodes":[{"id":"L1","name":"bug"}]},
		"comments":{"nodes":[{"id":"C1","body":"on it","user":{"id":"U1","name":"Sam"}}]}}}`)
	c := newTestClient(exec, &fakeCreds{id: "user-1"})

	detail, err := c.GetIssue(context.Background(), "PRD-1")
	require.NoError(t, err)

	assert.Equal(t, "In Progress", detail.State)
	assert.Equal(t, "Product", detail.Team)
	assert.Equal(t, "Sam", detail.Assignee)
	assert.Equal(t, []string{"bug"}, detail.Labels)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "Sam", detail.Comments[0].User)
}

func TestGetIssue_MissingIsNotFound(t *testing.T) {
	exec := newFakeExec()
	exec.on("issue(id:", `{"issue":null}`)
	c := newTestClient(exec, &fakeCreds{id: "user-1"})

	_, err := c.GetIssue(context.Background(), "PRD-999")

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "issue", nf.Kind)
}

func TestCreateIssue_ResolvesEveryNameBeforeMutating(t *testing.T) {
	exec := newFakeExec()
	exec.on("teams {", `{"teams":{"nodes":[{"id":"T1","name":"Product","key":"PRD"}]}}`)
	exec.on("users {", `{"users":{"nodes":[{"id":"U1","name":"Sam","email":"sam@x.io","active":true}]}}`)
	exec.on("workflowStates(", `{"workflowStates":{"nodes":[{"id":"S1","name":"In Progress","type":"started"}]}}`)
	exec.on("issueLabels {", `{"issueLabels":{"nodes":[{"id":"L1","name":"bug","color":"#f00"}]}}`)
	exec.on("projects {", `{"projects":{"nodes":[{"id":"P1","name":"Q3 Launch","status":"started"}]}}`)
	exec.on("issueCreate(", `{"issueCreate":{"success":true,"issue":{"id":"I1","identifier":"PRD-5","title":"New"}}}`)
	c := newTestClient(exec, &fakeCreds{id: "user-1"})

	issue, err := c.CreateIssue(context.Background(), CreateIssueParams{
		Team:     "Product",
		Title:    "New",
		Assignee: "Sam",
		State:    "In Progress",
		Project:  "Q3 Launch",
		Labels:   []string{"bug"},
	})
	require.NoError(t, err)
	assert.Equal(t, "PRD-5", issue.Identifier)

	vars := exec.lastVars("issueCreate(")
	input := vars["input"].(map[string]any)
	assert.Equal(t, "T1", input["teamId"])
	assert.Equal(t, "U1", input["assigneeId"])
	assert.Equal(t, "S1", input["stateId"])
	assert.Equal(t, "P1", input["projectId"])
	assert.Equal(t, []string{"L1"}, input["labelIds"])
}

func TestCreateIssue_UnknownAssigneeFailsBeforeMutating(t *testing.T) {
	exec := newFakeExec()
	exec.on("teams {", `{"teams":{"nodes":[{"id":"T1","name":"Product","key":"PRD"}]}}`)
	exec.on("users {", `{"users":{"nodes":[]}}`)
	c := newTestClient(exec, &fakeCreds{id: "user-1"})

	_, err := c.CreateIssue(context.Background(), CreateIssueParams{
		Team:     "Product",
		Title:    "New",
		Assignee: "Nobody",
	})

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Zero(t, exec.callCount("issueCreate("), "the mutation must not run on a resolution miss")
}

func TestUpdateIssue_StateChangeResolvesViaIssueTeam(t *testing.T) {
	exec := newFakeExec()
	exec.on("issue(id:", `{"issue":{
		"id":"I1","identifier":"PRD-1","title":"Ship it",
		"team":{"id":"T1","name":"Product","key":"PRD"},
		"comments":{"nodes":[]}}}`)
	exec.on("teams {", `{"teams":{"nodes":[{"id":"T1","name":"Product","key":"PRD"}]}}`)
	exec.on("workflowStates(", `{"workflowStates":{"nodes":[{"id":"S9","name":"Done","type":"completed"}]}}`)
	exec.on("issueUpdate(", `{"issueUpdate":{"success":true,"issue":{"id":"I1","identifier":"PRD-1","title":"Ship it","state":{"id":"S9","name":"Done","type":"completed"}}}}`)
	c := newTestClient(exec, &fakeCreds{id: "user-1"})

	state := "Done"
	issue, err := c.UpdateIssue(context.Background(), UpdateIssueParams{ID: "PRD-1", State: &state})
	require.NoError(t, err)
	assert.Equal(t, "Done", issue.State)

	vars := exec.lastVars("issueUpdate(")
	input := vars["input"].(map[string]any)
	assert.Equal(t, "S9", input["stateId"])
}

// --- Documents ---

const mixedDocuments = `{"documents":{"nodes":[
	{"id":"D1","title":"Active doc"},
	{"id":"D2","title":"Old doc","archivedAt":"2026-01-01T00:00:00Z"}]}}`

func TestListDocuments_DefaultsHideArchived(t *testing.T) {
	exec := newFakeExec()
	exec.on("documents(", mixedDocuments)
	c := newTestClient(exec, &fakeCreds{id: "user-1"})

	docs, err := c.ListDocuments(context.Background(), ListDocumentsParams{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "D1", docs[0].ID)
}

func TestListDocuments_IncludeArchived(t *testing.T) {
	exec := newFakeExec()
	exec.on("documents(", mixedDocuments)
	c := newTestClient(exec, &fakeCreds{id: "user-1"})

	docs, err := c.ListDocuments(context.Background(), ListDocumentsParams{IncludeArchived: true})
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

// --- Comments ---

func TestCreateComment_ResolvesIssueFirst(t *testing.T) {
	exec := newFakeExec()
	exec.on("issue(id:", `{"issue":{"id":"uuid-1","identifier":"PRD-1","title":"Ship it","comments":{"nodes":[]}}}`)
	exec.on("commentCreate(", `{"commentCreate":{"success":true,"comment":{"id":"C1","body":"looks good","user":{"id":"U1","name":"Sam"}}}}`)
	c := newTestClient(exec, &fakeCreds{id: "user-1"})

	comment, err := c.CreateComment(context.Background(), "PRD-1", "looks good")
	require.NoError(t, err)
	assert.Equal(t, "C1", comment.ID)

	vars := exec.lastVars("commentCreate(")
	input := vars["input"].(map[string]any)
	assert.Equal(t, "uuid-1", input["issueId"], "the mutation must use the internal id, not the identifier")
}

// --- Overview ---

func TestWorkspaceOverview_AggregatesEverything(t *testing.T) {
	exec := newFakeExec()
	exec.on("viewer {", `{"viewer":{"id":"U1","name":"Sam","email":"sam@x.io","active":true}}`)
	exec.on("teams {", `{"teams":{"nodes":[{"id":"T1","name":"Product","key":"PRD"}]}}`)
	exec.on("projects {", `{"projects":{"nodes":[{"id":"P1","name":"Q3 Launch","status":"started"}]}}`)
	exec.on("initiatives {", `{"initiatives":{"nodes":[{"id":"N1","name":"Growth","status":"active"}]}}`)
	exec.on("users {", `{"users":{"nodes":[{"id":"U1","name":"Sam","email":"sam@x.io","active":true}]}}`)
	c := newTestClient(exec, &fakeCreds{id: "user-1"})

	overview, err := c.WorkspaceOverview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Sam", overview.Viewer.Name)
	assert.Len(t, overview.Teams, 1)
	assert.Len(t, overview.Projects, 1)
	assert.Len(t, overview.Initiatives, 1)
	assert.Len(t, overview.Users, 1)
}
