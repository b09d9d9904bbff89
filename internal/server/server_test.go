package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"agentcanvas/internal/api"
	"agentcanvas/internal/config"
	"agentcanvas/internal/project"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer builds a server over a temp projects root holding one project
// named "demo" with the given files.
func newTestServer(t *testing.T, files map[string]string) *httptest.Server {
	t.Helper()

	root := t.TempDir()
	dir := filepath.Join(root, "demo")
	require.NoError(t, os.MkdirAll(dir, 0755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	srv := New(config.ServerConfig{Host: "localhost", Port: 0}, project.NewRegistry(root))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

const testRootAgent = `name: root_agent
agent_class: LlmAgent
model: gemini-2.0-flash
description: entry point
sub_agents:
    - config_path: helper.yaml
`

const testHelperAgent = `name: helper
agent_class: LlmAgent
model: gemini-2.0-flash
description: helper
`

func TestListAgents(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"root_agent.yaml": testRootAgent,
		"helper.yaml":     testHelperAgent,
	})

	resp, err := http.Get(ts.URL + "/api/projects/demo/agents")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var body struct {
		Agents []api.AgentFile `json:"agents"`
	}
	decode(t, resp, &body)
	require.Len(t, body.Agents, 2)
	assert.Equal(t, "helper.yaml", body.Agents[0].FileName)
	assert.Equal(t, "root_agent.yaml", body.Agents[1].FileName)
}

func TestGetAgentUnknownProjectIs404(t *testing.T) {
	ts := newTestServer(t, map[string]string{})

	resp, err := http.Get(ts.URL + "/api/projects/nope/agents")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetAgentJSONView(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"helper.yaml": testHelperAgent,
	})

	resp, err := http.Get(ts.URL + "/api/projects/demo/agents/helper.yaml?format=json")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var doc map[string]interface{}
	decode(t, resp, &doc)
	assert.Equal(t, "helper", doc["name"])
	assert.Equal(t, "LlmAgent", doc["agent_class"])
}

func TestPutAgentMalformedIs400AndPersists(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"helper.yaml": testHelperAgent,
	})

	raw := "name: helper\n  bad: indent\n"
	resp := doJSON(t, http.MethodPut, ts.URL+"/api/projects/demo/agents/helper.yaml", raw)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error string        `json:"error"`
		Line  int           `json:"line"`
		File  api.AgentFile `json:"file"`
	}
	decode(t, resp, &body)
	assert.NotEmpty(t, body.Error)
	assert.Equal(t, 2, body.Line)
	assert.Equal(t, raw, body.File.Raw)
	assert.False(t, body.File.Valid)

	// The broken content is what a subsequent GET returns.
	resp, err := http.Get(ts.URL + "/api/projects/demo/agents/helper.yaml")
	require.NoError(t, err)
	var file api.AgentFile
	decode(t, resp, &file)
	assert.Equal(t, raw, file.Raw)
}

func TestPutAgentRenamePropagates(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"root_agent.yaml": testRootAgent,
		"helper.yaml":     testHelperAgent,
	})

	renamed := "name: research_helper\nagent_class: LlmAgent\nmodel: gemini-2.0-flash\ndescription: helper\n"
	resp := doJSON(t, http.MethodPut, ts.URL+"/api/projects/demo/agents/helper.yaml", renamed)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var file api.AgentFile
	decode(t, resp, &file)
	assert.Equal(t, "research_helper.yaml", file.FileName)

	// The root's reference followed the rename.
	resp, err := http.Get(ts.URL + "/api/projects/demo/agents/root_agent.yaml")
	require.NoError(t, err)
	var root api.AgentFile
	decode(t, resp, &root)
	assert.Contains(t, root.Raw, "research_helper.yaml")

	resp, err = http.Get(ts.URL + "/api/projects/demo/agents/helper.yaml")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateAgentAndConflict(t *testing.T) {
	ts := newTestServer(t, map[string]string{})

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/projects/demo/agents", `{"name":"copy agent","class":"LlmAgent"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var file api.AgentFile
	decode(t, resp, &file)
	assert.Equal(t, "copy_agent.yaml", file.FileName)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/projects/demo/agents", `{"name":"Copy Agent"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCreateAgentUnknownClassIs400(t *testing.T) {
	ts := newTestServer(t, map[string]string{})

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/projects/demo/agents", `{"name":"x","class":"RouterAgent"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConnectionLifecycle(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"root_agent.yaml": testRootAgent,
		"helper.yaml":     testHelperAgent,
		"extra.yaml":      strings.ReplaceAll(testHelperAgent, "helper", "extra"),
	})

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/projects/demo/connections", `{"parent":"root_agent.yaml","child":"extra.yaml"}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPatch, ts.URL+"/api/projects/demo/connections", `{"parent":"root_agent.yaml","child":"extra.yaml","newIndex":0}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPatch, ts.URL+"/api/projects/demo/connections", `{"parent":"root_agent.yaml","child":"extra.yaml","newIndex":5}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/projects/demo/connections?parent=root_agent.yaml&child=extra.yaml", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestValidateAndExecuteCheck(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"root_agent.yaml": testRootAgent,
	})

	resp, err := http.Get(ts.URL + "/api/projects/demo/validate")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var validation struct {
		Results []api.NodeValidation `json:"results"`
	}
	decode(t, resp, &validation)
	require.Len(t, validation.Results, 1)
	assert.Equal(t, "helper.yaml", validation.Results[0].Broken[0].Target)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/projects/demo/execute-check", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var refusal struct {
		Error            string                `json:"error"`
		BrokenReferences []api.BrokenReference `json:"brokenReferences"`
	}
	decode(t, resp, &refusal)
	require.Len(t, refusal.BrokenReferences, 1)
	assert.Equal(t, "helper.yaml", refusal.BrokenReferences[0].Target)
}

func TestExecuteCheckPasses(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"root_agent.yaml": testRootAgent,
		"helper.yaml":     testHelperAgent,
	})

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/projects/demo/execute-check", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProjectNameEscapingRootIsRejected(t *testing.T) {
	root := t.TempDir()

	// Agent files in a sibling directory outside the projects root.
	outside := filepath.Join(filepath.Dir(root), "secret")
	require.NoError(t, os.MkdirAll(outside, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "root_agent.yaml"), []byte(testRootAgent), 0644))

	srv := New(config.ServerConfig{Host: "localhost", Port: 0}, project.NewRegistry(root))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	// An escaped separator matches the project wildcard as a single segment
	// but must never resolve outside the root.
	resp, err := http.Get(ts.URL + "/api/projects/..%2Fsecret/agents")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/projects", `{"name":"../evil"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, err = os.Stat(filepath.Join(filepath.Dir(root), "evil"))
	assert.True(t, os.IsNotExist(err))
}

func TestCreateProjectScaffolds(t *testing.T) {
	ts := newTestServer(t, map[string]string{})

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/projects", `{"name":"fresh"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/api/projects/fresh/agents")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Agents []api.AgentFile `json:"agents"`
	}
	decode(t, resp, &body)
	require.Len(t, body.Agents, 1)
	assert.Equal(t, "root_agent.yaml", body.Agents[0].FileName)
}
