// Package api is the single point of outbound communication with the
// Fun Kanban backend. It owns the bearer token protocol: every request
// carries the current access token, and a 401 triggers at most one token
// refresh followed by at most one retry of the original call.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CredentialStore holds the persisted token pair. The client is the sole
// writer; implementations must serialize access so a refresh never leaves
// a half-replaced pair behind.
type CredentialStore interface {
	Tokens() (access, refresh string)
	SetTokens(access, refresh string) error
	Clear() error
}

// Client issues authenticated JSON requests against the backend.
type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialStore
}

// New creates a Client for the given base URL, e.g. "https://kanban.example.com/api".
func New(baseURL string, creds CredentialStore) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		creds:   creds,
	}
}

// do issues one call, transparently refreshing the access token once on 401.
// body is JSON-encoded when non-nil; the response body is decoded into out.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	access, refresh := c.creds.Tokens()
	status, respBody, err := c.send(ctx, method, endpoint, payload, access)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && refresh != "" {
		if !c.refreshTokens(ctx, refresh) {
			return ErrSessionExpired
		}
		access, _ = c.creds.Tokens()
		status, respBody, err = c.send(ctx, method, endpoint, payload, access)
		if err != nil {
			return err
		}
	}

	if status < 200 || status > 299 {
		return newRequestError(status, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// send performs a single HTTP round-trip and reads the full body.
func (c *Client) send(ctx context.Context, method, endpoint string, payload []byte, access string) (int, []byte, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, rd)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// refreshTokens posts the refresh token unauthenticated and atomically
// replaces the pair on success. On any failure it clears both credentials
// (the holder is logged out) and reports false. It never retries itself,
// and concurrent 401s each run their own refresh; the store serializes the
// writes so the last complete pair wins.
func (c *Client) refreshTokens(ctx context.Context, refresh string) bool {
	payload, _ := json.Marshal(map[string]string{"refresh_token": refresh})
	status, body, err := c.send(ctx, http.MethodPost, "/auth/refresh", payload, "")
	if err != nil || status < 200 || status > 299 {
		zap.L().Warn("token refresh failed",
			zap.Int("status", status), zap.Error(err))
		if cerr := c.creds.Clear(); cerr != nil {
			zap.L().Warn("clear credentials", zap.Error(cerr))
		}
		return false
	}

	var tokens TokenResponse
	if err := json.Unmarshal(body, &tokens); err != nil {
		zap.L().Warn("token refresh: bad response", zap.Error(err))
		c.creds.Clear()
		return false
	}
	if err := c.creds.SetTokens(tokens.AccessToken, tokens.RefreshToken); err != nil {
		zap.L().Warn("persist refreshed tokens", zap.Error(err))
		return false
	}
	return true
}

// ─── Auth ──────────────────────────────────────────────

// Login exchanges credentials for a token pair and persists it.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	var tokens TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/login",
		map[string]string{"email": email, "password": password}, &tokens)
	if err != nil {
		return nil, err
	}
	if err := c.creds.SetTokens(tokens.AccessToken, tokens.RefreshToken); err != nil {
		return nil, fmt.Errorf("persist tokens: %w", err)
	}
	return &tokens, nil
}

// Register creates an account and persists the returned token pair.
func (c *Client) Register(ctx context.Context, email, password string) (*TokenResponse, error) {
	var tokens TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/register",
		map[string]string{"email": email, "password": password}, &tokens)
	if err != nil {
		return nil, err
	}
	if err := c.creds.SetTokens(tokens.AccessToken, tokens.RefreshToken); err != nil {
		return nil, fmt.Errorf("persist tokens: %w", err)
	}
	return &tokens, nil
}

// Logout tells the backend, best-effort, then always clears local credentials.
func (c *Client) Logout(ctx context.Context) error {
	reqErr := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if err := c.creds.Clear(); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return reqErr
}

// Me fetches the current identity.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateMe patches the current user's profile.
func (c *Client) UpdateMe(ctx context.Context, fields map[string]any) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPut, "/users/me", fields, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ForgotPassword requests a reset email. Unauthenticated.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/forgot-password",
		map[string]string{"email": email}, nil)
}

// ResetPassword redeems a reset token. Unauthenticated.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	return c.do(ctx, http.MethodPost, "/auth/reset-password",
		map[string]string{"token": token, "new_password": newPassword}, nil)
}

// Features fetches the unauthenticated feature-flag set as raw JSON.
func (c *Client) Features(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/features", nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ─── Workspaces ────────────────────────────────────────

func (c *Client) Workspaces(ctx context.Context) ([]Workspace, error) {
	var ws []Workspace
	if err := c.do(ctx, http.MethodGet, "/workspaces", nil, &ws); err != nil {
		return nil, err
	}
	return ws, nil
}

func (c *Client) CreateWorkspace(ctx context.Context, name, description, color string) (*Workspace, error) {
	var w Workspace
	err := c.do(ctx, http.MethodPost, "/workspaces",
		map[string]string{"name": name, "description": description, "color": color}, &w)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *Client) UpdateWorkspace(ctx context.Context, id ID, fields map[string]any) (*Workspace, error) {
	var w Workspace
	if err := c.do(ctx, http.MethodPut, "/workspaces/"+url.PathEscape(id.String()), fields, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *Client) DeleteWorkspace(ctx context.Context, id ID) error {
	return c.do(ctx, http.MethodDelete, "/workspaces/"+url.PathEscape(id.String()), nil, nil)
}

// ReorderWorkspaces persists the full ordered ID list.
func (c *Client) ReorderWorkspaces(ctx context.Context, ids []ID) error {
	return c.do(ctx, http.MethodPut, "/workspaces/reorder", ids, nil)
}

func (c *Client) WorkspaceMembers(ctx context.Context, wsID ID) ([]Member, error) {
	var ms []Member
	err := c.do(ctx, http.MethodGet, "/workspaces/"+url.PathEscape(wsID.String())+"/members", nil, &ms)
	if err != nil {
		return nil, err
	}
	return ms, nil
}

func (c *Client) AddWorkspaceMember(ctx context.Context, wsID, userID ID, role string) (*Member, error) {
	var m Member
	err := c.do(ctx, http.MethodPost, "/workspaces/"+url.PathEscape(wsID.String())+"/members",
		map[string]any{"user_id": userID, "role": role}, &m)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) RemoveWorkspaceMember(ctx context.Context, wsID, memberID ID) error {
	return c.do(ctx, http.MethodDelete,
		"/workspaces/"+url.PathEscape(wsID.String())+"/members/"+url.PathEscape(memberID.String()), nil, nil)
}

func (c *Client) UpdateMemberRole(ctx context.Context, wsID, memberID ID, role string) error {
	return c.do(ctx, http.MethodPut,
		"/workspaces/"+url.PathEscape(wsID.String())+"/members/"+url.PathEscape(memberID.String())+
			"?role="+url.QueryEscape(role), nil, nil)
}

// ─── Projects ──────────────────────────────────────────

func (c *Client) Projects(ctx context.Context, wsID ID) ([]Project, error) {
	var ps []Project
	err := c.do(ctx, http.MethodGet, "/workspaces/"+url.PathEscape(wsID.String())+"/projects", nil, &ps)
	if err != nil {
		return nil, err
	}
	return ps, nil
}

func (c *Client) CreateProject(ctx context.Context, wsID ID, name, color string) (*Project, error) {
	var p Project
	err := c.do(ctx, http.MethodPost, "/projects",
		map[string]any{"workspace_id": wsID, "name": name, "color": color}, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProject(ctx context.Context, id ID, fields map[string]any) (*Project, error) {
	var p Project
	if err := c.do(ctx, http.MethodPut, "/projects/"+url.PathEscape(id.String()), fields, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeleteProject(ctx context.Context, id ID) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+url.PathEscape(id.String()), nil, nil)
}

// ─── Tasks ─────────────────────────────────────────────

func (c *Client) Tasks(ctx context.Context, wsID ID) ([]Task, error) {
	var ts []Task
	err := c.do(ctx, http.MethodGet, "/workspaces/"+url.PathEscape(wsID.String())+"/tasks", nil, &ts)
	if err != nil {
		return nil, err
	}
	return ts, nil
}

func (c *Client) CreateTask(ctx context.Context, t NewTask) (*Task, error) {
	var created Task
	if err := c.do(ctx, http.MethodPost, "/tasks", t, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateTask applies a partial mutation. Single-field updates (a drag move,
// a priority change) go through here with exactly one field set.
func (c *Client) UpdateTask(ctx context.Context, id ID, patch TaskPatch) (*Task, error) {
	var t Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id.String()), patch, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteTask(ctx context.Context, id ID) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id.String()), nil, nil)
}

func (c *Client) AddTaskUpdate(ctx context.Context, taskID ID, content string) (*TaskUpdate, error) {
	var u TaskUpdate
	err := c.do(ctx, http.MethodPost, "/tasks/"+url.PathEscape(taskID.String())+"/updates",
		map[string]string{"content": content}, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) DeleteTaskUpdate(ctx context.Context, taskID, updateID ID) error {
	return c.do(ctx, http.MethodDelete,
		"/tasks/"+url.PathEscape(taskID.String())+"/updates/"+url.PathEscape(updateID.String()), nil, nil)
}

// ─── Notifications ─────────────────────────────────────

func (c *Client) Notifications(ctx context.Context, limit int) ([]Notification, error) {
	var ns []Notification
	err := c.do(ctx, http.MethodGet, "/notifications?limit="+strconv.Itoa(limit), nil, &ns)
	if err != nil {
		return nil, err
	}
	return ns, nil
}

func (c *Client) NotificationCount(ctx context.Context) (*NotificationCount, error) {
	var n NotificationCount
	if err := c.do(ctx, http.MethodGet, "/notifications/count", nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) MarkNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/notifications/mark-read", nil, nil)
}

func (c *Client) DeleteNotification(ctx context.Context, id ID) error {
	return c.do(ctx, http.MethodDelete, "/notifications/"+url.PathEscape(id.String()), nil, nil)
}

func (c *Client) CleanupNotifications(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/notifications/cleanup", nil, nil)
}

// ─── Admin ─────────────────────────────────────────────

func (c *Client) AdminStats(ctx context.Context) (*AdminStats, error) {
	var s AdminStats
	if err := c.do(ctx, http.MethodGet, "/admin/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) AdminUsers(ctx context.Context) ([]User, error) {
	var us []User
	if err := c.do(ctx, http.MethodGet, "/admin/users", nil, &us); err != nil {
		return nil, err
	}
	return us, nil
}

func (c *Client) CreateUser(ctx context.Context, fields map[string]any) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPost, "/admin/users", fields, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateUser(ctx context.Context, id ID, fields map[string]any) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPut, "/admin/users/"+url.PathEscape(id.String()), fields, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ResetUserPassword(ctx context.Context, id ID, newPassword string) error {
	return c.do(ctx, http.MethodPost, "/admin/users/"+url.PathEscape(id.String())+"/reset-password",
		map[string]string{"new_password": newPassword}, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id ID) error {
	return c.do(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(id.String()), nil, nil)
}

func (c *Client) AdminWorkspaces(ctx context.Context) ([]Workspace, error) {
	var ws []Workspace
	if err := c.do(ctx, http.MethodGet, "/admin/workspaces", nil, &ws); err != nil {
		return nil, err
	}
	return ws, nil
}

func (c *Client) ActivityLog(ctx context.Context, limit int) ([]ActivityEntry, error) {
	var es []ActivityEntry
	err := c.do(ctx, http.MethodGet, "/admin/activity?limit="+strconv.Itoa(limit), nil, &es)
	if err != nil {
		return nil, err
	}
	return es, nil
}

// ─── Settings ──────────────────────────────────────────

func (c *Client) SMTPSettings(ctx context.Context) (*SMTPSettings, error) {
	var s SMTPSettings
	if err := c.do(ctx, http.MethodGet, "/admin/settings/smtp", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) UpdateSMTPSettings(ctx context.Context, s SMTPSettings) error {
	return c.do(ctx, http.MethodPut, "/admin/settings/smtp", s, nil)
}

func (c *Client) TestSMTP(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/admin/settings/smtp/test", nil, nil)
}

func (c *Client) AppSettings(ctx context.Context) (*AppSettings, error) {
	var s AppSettings
	if err := c.do(ctx, http.MethodGet, "/admin/settings/app", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) UpdateAppSettings(ctx context.Context, s AppSettings) error {
	return c.do(ctx, http.MethodPut, "/admin/settings/app", s, nil)
}
