// Package client talks to an ironclock server. Its methods mirror the local
// engine so the CLI and the board can run against either.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/existflow/ironclock/internal/engine"
	"github.com/existflow/ironclock/internal/model"
	"github.com/existflow/ironclock/internal/reminder"
	"github.com/existflow/ironclock/internal/report"
)

// DefaultServerURL is used until another server is set
const DefaultServerURL = "http://localhost:8080"

// Config holds the remote login
type Config struct {
	ServerURL string `json:"server_url"`
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	Username  string `json:"username,omitempty"`
}

// APIError is an error response from the server
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client is the REST client
type Client struct {
	config     *Config
	configPath string
	httpClient *http.Client
}

// New creates a client whose login is stored at configPath
func New(configPath string) *Client {
	c := &Client{
		configPath: configPath,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	c.loadConfig()
	return c
}

// NewDefault creates a client whose login is stored in dir/remote.json
func NewDefault(dir string) *Client {
	return New(filepath.Join(dir, "remote.json"))
}

func (c *Client) loadConfig() {
	c.config = &Config{ServerURL: DefaultServerURL}

	data, err := os.ReadFile(c.configPath)
	if err != nil {
		return
	}
	if err := json.Unmarshal(data, c.config); err != nil {
		c.config = &Config{ServerURL: DefaultServerURL}
	}
}

func (c *Client) saveConfig() error {
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c.config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.configPath, data, 0600)
}

// SetServer sets the server URL
func (c *Client) SetServer(serverURL string) error {
	c.config.ServerURL = strings.TrimRight(serverURL, "/")
	return c.saveConfig()
}

// IsLoggedIn returns true if a session token is stored
func (c *Client) IsLoggedIn() bool {
	return c.config.Token != ""
}

// Status returns the server URL and the logged in user
func (c *Client) Status() (serverURL, username, userID string) {
	return c.config.ServerURL, c.config.Username, c.config.UserID
}

type authResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// Register creates a new account and logs in
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	var result authResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return fmt.Errorf("register failed: %w", err)
	}
	return c.saveLogin(username, result)
}

// Login authenticates with username and password
func (c *Client) Login(ctx context.Context, username, password string) error {
	var result authResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/login", map[string]string{
		"username": username,
		"password": password,
	}, &result)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	return c.saveLogin(username, result)
}

func (c *Client) saveLogin(username string, result authResponse) error {
	c.config.Token = result.Token
	c.config.UserID = result.UserID
	c.config.Username = username
	return c.saveConfig()
}

// Logout ends the server session and forgets the token. The token is
// forgotten even if the server cannot be reached.
func (c *Client) Logout(ctx context.Context) error {
	var err error
	if c.IsLoggedIn() {
		err = c.do(ctx, http.MethodPost, "/api/v1/logout", nil, nil)
	}

	c.config.Token = ""
	c.config.UserID = ""
	c.config.Username = ""
	if saveErr := c.saveConfig(); saveErr != nil {
		return saveErr
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		return nil
	}
	return err
}

// do sends a JSON request and decodes the JSON response into out. Error
// responses for tasks map back to the engine's errors.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.ServerURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		respBody, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(respBody, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(respBody))
		}

		switch {
		case resp.StatusCode == http.StatusNotFound && e.Error == "task not found":
			return engine.ErrNotFound
		case resp.StatusCode == http.StatusConflict && e.Error == engine.ErrNotRunning.Error():
			return engine.ErrNotRunning
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Board returns the tasks ordered by status, position and id
func (c *Client) Board(ctx context.Context) ([]model.Task, error) {
	var resp struct {
		Tasks []model.Task `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/tasks", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// CreateTask adds a task
func (c *Client) CreateTask(ctx context.Context, in engine.NewTask) (model.Task, error) {
	body := map[string]interface{}{
		"title":       in.Title,
		"description": in.Description,
		"project_id":  in.ProjectID,
		"priority":    in.Priority,
	}
	if in.DueDate != nil {
		body["due_date"] = in.DueDate.Format(time.RFC3339)
	}

	var task model.Task
	err := c.do(ctx, http.MethodPost, "/api/v1/tasks", body, &task)
	return task, err
}

// StartTimer starts a task's timer
func (c *Client) StartTimer(ctx context.Context, taskID string) (engine.StartResult, error) {
	var res engine.StartResult
	err := c.do(ctx, http.MethodPost, "/api/v1/tasks/"+url.PathEscape(taskID)+"/start", nil, &res)
	return res, err
}

// StopTimer stops a task's timer
func (c *Client) StopTimer(ctx context.Context, taskID string) (engine.StopResult, error) {
	var res engine.StopResult
	err := c.do(ctx, http.MethodPost, "/api/v1/tasks/"+url.PathEscape(taskID)+"/stop", nil, &res)
	return res, err
}

// MoveTask changes a task's status and position
func (c *Client) MoveTask(ctx context.Context, taskID string, status model.Status, position int) (engine.MoveResult, error) {
	var res engine.MoveResult
	err := c.do(ctx, http.MethodPut, "/api/v1/tasks/"+url.PathEscape(taskID)+"/move", map[string]interface{}{
		"status":   status,
		"position": position,
	}, &res)
	return res, err
}

// DeleteTask deletes a task, stopping its timer first
func (c *Client) DeleteTask(ctx context.Context, taskID string) (*engine.StopResult, error) {
	var resp struct {
		Stopped *engine.StopResult `json:"stopped"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/v1/tasks/"+url.PathEscape(taskID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Stopped, nil
}

// RunningTask returns the running task, or nil
func (c *Client) RunningTask(ctx context.Context) (*model.Task, error) {
	var resp struct {
		Task *model.Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/timer", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Task, nil
}

// TotalSecondsToday returns the time tracked today
func (c *Client) TotalSecondsToday(ctx context.Context) (int64, error) {
	var resp struct {
		Seconds int64 `json:"seconds"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/time/today", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Seconds, nil
}

func rangeQuery(start, end time.Time) string {
	q := url.Values{}
	q.Set("start", start.Format(time.RFC3339))
	q.Set("end", end.Format(time.RFC3339))
	return q.Encode()
}

// EntriesInRange returns the entries that started in [start, end)
func (c *Client) EntriesInRange(ctx context.Context, start, end time.Time) ([]model.TimeEntry, error) {
	var resp struct {
		Entries []model.TimeEntry `json:"entries"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/time/entries?"+rangeQuery(start, end), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// Dashboard returns the dashboard statistics
func (c *Client) Dashboard(ctx context.Context) (report.Dashboard, error) {
	var d report.Dashboard
	err := c.do(ctx, http.MethodGet, "/api/v1/reports/dashboard", nil, &d)
	return d, err
}

// Report returns a grouped report
func (c *Client) Report(ctx context.Context, start, end time.Time, groupBy report.GroupBy) (report.Report, error) {
	var r report.Report
	path := "/api/v1/reports/summary?" + rangeQuery(start, end) + "&group_by=" + url.QueryEscape(string(groupBy))
	err := c.do(ctx, http.MethodGet, path, nil, &r)
	return r, err
}

// Reminders returns the current reminders
func (c *Client) Reminders(ctx context.Context) ([]reminder.Reminder, error) {
	var resp struct {
		Reminders []reminder.Reminder `json:"reminders"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/reminders", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Reminders, nil
}

// Projects returns the user's projects
func (c *Client) Projects(ctx context.Context) ([]model.Project, error) {
	var resp struct {
		Projects []model.Project `json:"projects"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/projects", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Projects, nil
}

// CreateProject adds a project
func (c *Client) CreateProject(ctx context.Context, name, color string) (model.Project, error) {
	var p model.Project
	err := c.do(ctx, http.MethodPost, "/api/v1/projects", map[string]string{"name": name, "color": color}, &p)
	return p, err
}

// Now returns the local time
func (c *Client) Now() time.Time {
	return time.Now()
}

// Close releases nothing; it lets Client stand in for a local tracker
func (c *Client) Close() error {
	return nil
}
