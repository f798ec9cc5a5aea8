//go:build integration

package integration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"

	mdc "github.com/jsamuelsen/go-mdc"
	adapter "github.com/jsamuelsen/go-mdc/internal/adapters/http"
	"github.com/jsamuelsen/go-mdc/internal/adapters/http/handlers"
	"github.com/jsamuelsen/go-mdc/internal/platform/config"
	"github.com/jsamuelsen/go-mdc/internal/ports"
)

var (
	localServer     *httptest.Server
	localServerOnce sync.Once
)

// localBaseURL starts an in-process server on first use. Scenarios run
// against it when BASE_URL does not point at an already running instance.
func localBaseURL() string {
	localServerOnce.Do(func() {
		gin.SetMode(gin.TestMode)

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		appCfg := &config.AppConfig{
			Name:        "go-mdc",
			Version:     "integration",
			Environment: "test",
		}

		healthHandler := handlers.NewHealthHandler(
			ports.NewHealthRegistry(),
			handlers.NewBuildInfo("integration", "none", "unknown"),
		)
		contextHandler := handlers.NewContextHandler(mdc.NewSharedStore())

		engine := gin.New()
		adapter.SetupRouter(engine, adapter.NewDefaultRouterConfig(
			logger, appCfg, healthHandler, contextHandler,
		))

		localServer = httptest.NewServer(engine)
	})

	return localServer.URL
}

// testContext holds state shared across step definitions within a scenario.
type testContext struct {
	baseURL      string
	client       *http.Client
	response     *http.Response
	responseBody []byte
	err          error
}

// newTestContext creates a new test context with sensible defaults.
func newTestContext() *testContext {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = localBaseURL()
	}

	return &testContext{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// reset clears response state between scenarios.
func (tc *testContext) reset() {
	if tc.response != nil && tc.response.Body != nil {
		tc.response.Body.Close()
	}
	tc.response = nil
	tc.responseBody = nil
	tc.err = nil
}

// InitializeScenario registers step definitions for each scenario.
func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := newTestContext()

	// Reset state before each scenario
	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Clean up after each scenario
	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Register step definitions
	ctx.Step(`^the service is running$`, tc.theServiceIsRunning)
	ctx.Step(`^I request GET "([^"]*)"$`, tc.iRequestGET)
	ctx.Step(`^I request PUT "([^"]*)" with body:$`, tc.iRequestPUTWithBody)
	ctx.Step(`^I request DELETE "([^"]*)"$`, tc.iRequestDELETE)
	ctx.Step(`^the response status should be (\d+)$`, tc.theResponseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, tc.theResponseShouldContain)
	ctx.Step(`^the response should not contain "([^"]*)"$`, tc.theResponseShouldNotContain)
}

// theServiceIsRunning verifies the service is reachable.
func (tc *testContext) theServiceIsRunning() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tc.baseURL+"/-/live", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("service is not running at %s: %w", tc.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status %d", resp.StatusCode)
	}

	return nil
}

// iRequestGET makes a GET request to the specified path.
func (tc *testContext) iRequestGET(path string) error {
	return tc.doRequest(http.MethodGet, path, "")
}

// iRequestPUTWithBody makes a PUT request with the docstring as JSON body.
func (tc *testContext) iRequestPUTWithBody(path string, body *godog.DocString) error {
	return tc.doRequest(http.MethodPut, path, body.Content)
}

// iRequestDELETE makes a DELETE request to the specified path.
func (tc *testContext) iRequestDELETE(path string) error {
	return tc.doRequest(http.MethodDelete, path, "")
}

// doRequest performs an HTTP request and captures the response.
func (tc *testContext) doRequest(method, path, body string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, tc.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	tc.response, tc.err = tc.client.Do(req)
	if tc.err != nil {
		return fmt.Errorf("request failed: %w", tc.err)
	}

	tc.responseBody, tc.err = io.ReadAll(tc.response.Body)
	if tc.err != nil {
		return fmt.Errorf("failed to read response body: %w", tc.err)
	}

	return nil
}

// theResponseStatusShouldBe asserts the response status code.
func (tc *testContext) theResponseStatusShouldBe(expectedCode int) error {
	if tc.response == nil {
		return fmt.Errorf("no response received")
	}

	if tc.response.StatusCode != expectedCode {
		return fmt.Errorf("expected status %d, got %d. Body: %s",
			expectedCode, tc.response.StatusCode, string(tc.responseBody))
	}

	return nil
}

// theResponseShouldContain asserts the response body contains the given text.
func (tc *testContext) theResponseShouldContain(text string) error {
	if tc.responseBody == nil {
		return fmt.Errorf("no response body")
	}

	body := string(tc.responseBody)
	if !strings.Contains(body, text) {
		return fmt.Errorf("response body does not contain %q.\nBody: %s", text, body)
	}

	return nil
}

// theResponseShouldNotContain asserts the response body omits the given text.
func (tc *testContext) theResponseShouldNotContain(text string) error {
	if strings.Contains(string(tc.responseBody), text) {
		return fmt.Errorf("response body unexpectedly contains %q.\nBody: %s",
			text, string(tc.responseBody))
	}

	return nil
}

// TestFeatures runs the GoDog BDD test suite.
func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../features"},
			TestingT: t,
			Tags:     os.Getenv("GODOG_TAGS"),
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
