package tests

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const e2ePassword = "correct-horse-battery"

type farmhandContainer struct {
	testcontainers.Container
	URI string
}

// setupFarmhand starts the server image with two accounts, alice and bob, created before serve.
func setupFarmhand(ctx context.Context, t *testing.T) (*farmhandContainer, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "test-secret"
	}

	natPort := nat.Port(port + "/tcp")

	script := strings.Join([]string{
		"farmhand user create -u alice -p " + e2ePassword,
		"farmhand user create -u bob -p " + e2ePassword,
		"exec farmhand serve",
	}, " && ")

	req := testcontainers.ContainerRequest{
		FromDockerfile: testcontainers.FromDockerfile{
			Context:    "../",
			Dockerfile: "Dockerfile",
		},
		ExposedPorts: []string{string(natPort)},
		Cmd:          []string{"sh", "-c", script},
		Env: map[string]string{
			"PORT":               port,
			"GIN_MODE":           "release",
			"DATABASE_URL":       "sqlite:/tmp/farmhand-e2e.db",
			"JWT_SECRET":         jwtSecret,
			"EXPORT_SIGNING_KEY": "e2e-signing-key",
			"STORAGE_DIR":        "/tmp/media",
			"TEST_MODE":          "true",
		},
		WaitingFor: wait.ForHTTP("/healthz").
			WithPort(natPort).
			WithStartupTimeout(90 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})

	var farmhandC *farmhandContainer
	if container != nil {
		farmhandC = &farmhandContainer{Container: container}
	}
	if err != nil {
		return farmhandC, err
	}

	host, err := container.Host(ctx)
	if err != nil {
		return farmhandC, err
	}

	mappedPort, err := container.MappedPort(ctx, natPort)
	if err != nil {
		return farmhandC, err
	}

	farmhandC.URI = fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
	return farmhandC, nil
}

func call(t *testing.T, method, url, username string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if username != "" {
		req.Header.Set("X-Test-Username", username)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func createdID(t *testing.T, resp func() (int, []byte)) uint {
	t.Helper()
	status, body := resp()
	require.Equal(t, http.StatusCreated, status, string(body))

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &result))
	for _, key := range []string{"ID", "id"} {
		if id, ok := result[key].(float64); ok {
			return uint(id)
		}
	}
	t.Fatalf("no id in response: %s", body)
	return 0
}

func TestE2E_LoginAndTokens(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test")
	}

	ctx := context.Background()
	farmhandC, err := setupFarmhand(ctx, t)
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, farmhandC)

	status, body := call(t, http.MethodPost, farmhandC.URI+"/api/v1/auth/login", "",
		map[string]string{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status, string(body))

	status, body = call(t, http.MethodPost, farmhandC.URI+"/api/v1/auth/login", "",
		map[string]string{"username": "alice", "password": e2ePassword})
	require.Equal(t, http.StatusOK, status, string(body))
	var login map[string]string
	require.NoError(t, json.Unmarshal(body, &login))
	assert.NotEmpty(t, login["token"])

	status, body = call(t, http.MethodPost, farmhandC.URI+"/api/v1/tokens", "alice", map[string]string{"expires_in": "1h"})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = call(t, http.MethodGet, farmhandC.URI+"/api/v1/tokens", "alice", nil)
	require.Equal(t, http.StatusOK, status)
	var tokens []map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &tokens))
	assert.Len(t, tokens, 2)

	status, _ = call(t, http.MethodGet, farmhandC.URI+"/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestE2E_LogToPayrollExport(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test")
	}

	ctx := context.Background()
	farmhandC, err := setupFarmhand(ctx, t)
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, farmhandC)

	api := farmhandC.URI + "/api/v1"

	farmID := createdID(t, func() (int, []byte) {
		return call(t, http.MethodPost, api+"/farms", "alice", map[string]string{"name": "Riverside", "location": "Kaduna"})
	})
	farm := fmt.Sprintf("%s/farms/%d", api, farmID)

	status, body := call(t, http.MethodPut, farm+"/members", "alice", map[string]string{"username": "bob", "role": "supervisor"})
	require.Equal(t, http.StatusOK, status, string(body))

	status, _ = call(t, http.MethodGet, farm+"/pay-periods", "bob", nil)
	assert.Equal(t, http.StatusForbidden, status)

	workerID := createdID(t, func() (int, []byte) {
		return call(t, http.MethodPost, farm+"/workers", "bob", map[string]string{"full_name": "Halima Yusuf"})
	})
	teamID := createdID(t, func() (int, []byte) {
		return call(t, http.MethodPost, farm+"/teams", "bob", map[string]interface{}{"name": "East crew", "leader_worker_id": workerID})
	})
	plotID := createdID(t, func() (int, []byte) {
		return call(t, http.MethodPost, farm+"/plots", "bob", map[string]interface{}{"name": "Riverbank", "size_acres": 20})
	})
	planID := createdID(t, func() (int, []byte) {
		return call(t, http.MethodPost, farm+"/plans", "bob", map[string]string{
			"title": "Rainy season", "frequency": "weekly", "date_start": "2024-06-01", "date_end": "2024-06-30",
		})
	})
	jobID := createdID(t, func() (int, []byte) {
		return call(t, http.MethodPost, farm+"/jobs", "bob", map[string]interface{}{
			"plan_id": planID, "team_id": teamID, "plot_id": plotID, "job_type": "weeding",
			"allotted_acres": 8, "start_date": "2024-06-03", "due_date": "2024-06-14",
		})
	})
	logID := createdID(t, func() (int, []byte) {
		return call(t, http.MethodPost, fmt.Sprintf("%s/jobs/%d/logs", farm, jobID), "bob", map[string]interface{}{
			"log_date": "2024-06-04", "acres_done": 4, "worker_id": workerID,
		})
	})

	status, _ = call(t, http.MethodPost, fmt.Sprintf("%s/logs/%d/approve", farm, logID), "bob", nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, body = call(t, http.MethodPost, fmt.Sprintf("%s/logs/%d/approve", farm, logID), "alice", nil)
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = call(t, http.MethodGet, fmt.Sprintf("%s/jobs/%d", farm, jobID), "bob", nil)
	require.Equal(t, http.StatusOK, status)
	var job map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &job))
	assert.Equal(t, 50.0, job["percent_complete"])

	cardID := createdID(t, func() (int, []byte) {
		return call(t, http.MethodPost, farm+"/rate-cards", "alice", map[string]interface{}{"name": "2024", "activate": true})
	})
	status, body = call(t, http.MethodPut, fmt.Sprintf("%s/rate-cards/%d/rates", farm, cardID), "alice", map[string]interface{}{
		"rates": []map[string]string{{"job_type": "weeding", "rate_amount": "12500"}},
	})
	require.Equal(t, http.StatusOK, status, string(body))

	periodID := createdID(t, func() (int, []byte) {
		return call(t, http.MethodPost, farm+"/pay-periods", "alice", map[string]string{
			"period_type": "weekly", "start_date": "2024-06-03", "end_date": "2024-06-09",
		})
	})
	status, body = call(t, http.MethodPost, fmt.Sprintf("%s/pay-periods/%d/run", farm, periodID), "alice", nil)
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = call(t, http.MethodGet, fmt.Sprintf("%s/pay-periods/%d/export", farm, periodID), "alice", nil)
	require.Equal(t, http.StatusOK, status)
	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Worker", "Gross", "Deductions", "Net"},
		{"Halima Yusuf", "50000.00", "0.00", "50000.00"},
	}, records)

	status, body = call(t, http.MethodGet, farm+"/dashboard", "bob", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var dash map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &dash))
	assert.Equal(t, 0.0, dash["pending_approvals"])
}

func TestE2E_NonMemberIsForbidden(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test")
	}

	ctx := context.Background()
	farmhandC, err := setupFarmhand(ctx, t)
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, farmhandC)

	farmID := createdID(t, func() (int, []byte) {
		return call(t, http.MethodPost, farmhandC.URI+"/api/v1/farms", "alice", map[string]string{"name": "Hilltop"})
	})

	status, _ := call(t, http.MethodGet, fmt.Sprintf("%s/api/v1/farms/%d/workers", farmhandC.URI, farmID), "bob", nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, http.MethodGet, fmt.Sprintf("%s/api/v1/farms/%d/workers", farmhandC.URI, farmID), "mallory", nil)
	assert.Equal(t, http.StatusForbidden, status)
}
