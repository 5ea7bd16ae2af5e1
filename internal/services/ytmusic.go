// YouTube Music implementation of [DestinationClient]
//
// Talks to a local ytmusicapi proxy. Playback auth comes from an oauth.json
// credential bundle; the session is established lazily on the first call
// that mutates state.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dmtroyer/playferry/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultProxyURL   = "http://127.0.0.1:8080"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	oauthBundleName   = "oauth.json"
	searchResultLimit = 5
)

// titleCleaners strip featuring credits and reissue qualifiers that hurt
// search relevance. Order matters: parenthesized forms are removed before
// the bare keyword forms.
var titleCleaners = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*[\(\[]feat\..*?[\)\]]`),
	regexp.MustCompile(`(?i)\s*[\(\[]ft\..*?[\)\]]`),
	regexp.MustCompile(`(?i)\s*[\(\[]featuring.*?[\)\]]`),
	regexp.MustCompile(`(?i)\s*[\(\[]with.*?[\)\]]`),
	regexp.MustCompile(`(?i)\s*-\s*remaster.*$`),
	regexp.MustCompile(`(?i)\s*[\(\[]remaster.*?[\)\]]`),
	regexp.MustCompile(`(?i)\s*[\(\[].*?version[\)\]]`),
	regexp.MustCompile(`(?i)\s*[\(\[].*?edit[\)\]]`),
}

// CleanSongTitle normalizes a track title for search. The substitutions are
// applied in sequence and the result is trimmed.
func CleanSongTitle(title string) string {
	for _, re := range titleCleaners {
		title = re.ReplaceAllString(title, "")
	}
	return strings.TrimSpace(title)
}

// oauthBundle mirrors the on-disk oauth.json credential file.
type oauthBundle struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// ytSession holds the lazily-established authenticated client.
type ytSession struct {
	client *http.Client
}

// ytErrorResponse is the proxy's error envelope.
type ytErrorResponse struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

type ytSearchItem struct {
	VideoID string `json:"videoId"`
	Title   string `json:"title"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name string `json:"name"`
	} `json:"album"`
	Duration string `json:"duration"`
}

// YTMusicClient implements [DestinationClient] against a ytmusicapi proxy.
type YTMusicClient struct {
	baseURL    string
	oauthPath  string
	httpClient *http.Client
	limiter    *rate.Limiter
	session    *ytSession
	logger     *log.Logger
}

// NewYTMusicClient creates a client for the proxy at proxyURL (the local
// default when empty). oauthPath points at the credential bundle; resolution
// is deferred to the first authenticated call, so searches work without it.
func NewYTMusicClient(proxyURL, oauthPath string, httpClient *http.Client, logger *log.Logger) *YTMusicClient {
	if proxyURL == "" {
		proxyURL = defaultProxyURL
	}
	if httpClient == nil {
		httpClient = defaultHTTPClient()
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &YTMusicClient{
		baseURL:    strings.TrimRight(proxyURL, "/"),
		oauthPath:  ResolveOAuthPath(oauthPath),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(3), 1),
		logger:     logger,
	}
}

func (y *YTMusicClient) Name() string {
	return "YouTube Music"
}

// ResolveOAuthPath locates the oauth.json bundle. Resolution order: explicit
// path, the YTMUSIC_OAUTH_JSON env var, the executable's directory, then the
// working directory. Returns "" when no candidate exists on disk.
func ResolveOAuthPath(explicit string) string {
	candidates := []string{}

	if explicit != "" {
		candidates = append(candidates, explicit)
	}
	if env := os.Getenv(shared.EnvYTMusicOAuthJSON); env != "" {
		candidates = append(candidates, env)
	}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), oauthBundleName))
	}
	candidates = append(candidates, oauthBundleName)

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}

	return ""
}

// Authenticated reports whether a credential bundle is available. It does
// not validate the credentials against the API.
func (y *YTMusicClient) Authenticated() bool {
	return y.oauthPath != ""
}

// authSession establishes the authenticated client on first use.
//
// Bundles carrying client credentials get a refreshing token source;
// otherwise the stored access token is used as-is until it expires.
func (y *YTMusicClient) authSession(ctx context.Context) (*ytSession, error) {
	if y.session != nil {
		return y.session, nil
	}

	if y.oauthPath == "" {
		return nil, fmt.Errorf(
			"%w: no %s found (set %s or run ytmusicapi oauth)",
			shared.ErrAuthRequired, oauthBundleName, shared.EnvYTMusicOAuthJSON,
		)
	}

	data, err := os.ReadFile(y.oauthPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", shared.ErrInvalidCredentials, y.oauthPath, err)
	}

	var bundle oauthBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", shared.ErrInvalidCredentials, y.oauthPath, err)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, y.httpClient)
	token := &oauth2.Token{
		AccessToken:  bundle.AccessToken,
		RefreshToken: bundle.RefreshToken,
		TokenType:    "Bearer",
	}

	var src oauth2.TokenSource
	if bundle.ClientID != "" && bundle.ClientSecret != "" {
		conf := &oauth2.Config{
			ClientID:     bundle.ClientID,
			ClientSecret: bundle.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: googleTokenURL},
		}
		src = conf.TokenSource(ctx, token)
	} else {
		src = oauth2.StaticTokenSource(token)
	}

	y.session = &ytSession{client: oauth2.NewClient(ctx, src)}
	return y.session, nil
}

// doRequest performs a request against the proxy, decoding the proxy's
// error envelope on failure. authed requests go through the lazy session.
func (y *YTMusicClient) doRequest(ctx context.Context, method, endpoint string, body, result any, authed bool) error {
	client := y.httpClient
	if authed {
		session, err := y.authSession(ctx)
		if err != nil {
			return err
		}
		client = session.client
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, y.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp ytErrorResponse
		if json.Unmarshal(data, &errResp) == nil {
			detail := errResp.Detail
			if detail == "" {
				detail = errResp.Error
			}
			if detail != "" {
				return fmt.Errorf("%w: %s (status %d)", shared.ErrAPIRequest, detail, resp.StatusCode)
			}
		}
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// SearchSong finds the best song match for an artist and title.
//
// The title is cleaned before searching and the query is restricted to the
// songs shelf. Returns (nil, nil) when nothing matched; the first result is
// taken as the match otherwise.
func (y *YTMusicClient) SearchSong(ctx context.Context, artist, title string) (*SearchResult, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := strings.TrimSpace(artist + " " + CleanSongTitle(title))
	y.logger.Debug("searching", "query", query)
	endpoint := fmt.Sprintf(
		"/api/search?q=%s&filter=songs&limit=%d",
		url.QueryEscape(query), searchResultLimit,
	)

	var items []ytSearchItem
	if err := y.doRequest(ctx, http.MethodGet, endpoint, nil, &items, false); err != nil {
		return nil, fmt.Errorf("search failed for %q: %w", query, err)
	}

	if len(items) == 0 {
		return nil, nil
	}

	return buildSearchResult(items[0]), nil
}

// CreatePlaylist creates a private playlist and returns its id.
func (y *YTMusicClient) CreatePlaylist(ctx context.Context, title, description string) (string, error) {
	payload := map[string]string{
		"title":          title,
		"description":    description,
		"privacy_status": "PRIVATE",
	}

	var resp struct {
		PlaylistID string `json:"playlist_id"`
		ID         string `json:"id"`
	}
	if err := y.doRequest(ctx, http.MethodPost, "/api/playlists", payload, &resp, true); err != nil {
		return "", fmt.Errorf("failed to create playlist %q: %w", title, err)
	}

	id := resp.PlaylistID
	if id == "" {
		id = resp.ID
	}
	if id == "" {
		return "", fmt.Errorf("%w: create playlist response carried no id", shared.ErrAPIRequest)
	}

	return id, nil
}

// AddPlaylistItems appends videoIDs to a playlist, dropping duplicates while
// preserving first-seen order. An empty input is a successful no-op.
//
// The proxy relays the upstream status object when it has one; absent a
// status field, a non-empty 2xx body counts as success.
func (y *YTMusicClient) AddPlaylistItems(ctx context.Context, playlistID string, videoIDs []string) (bool, error) {
	deduped := dedupePreserveOrder(videoIDs)
	if len(deduped) == 0 {
		return true, nil
	}

	payload := map[string][]string{"video_ids": deduped}
	endpoint := fmt.Sprintf("/api/playlists/%s/items", playlistID)

	var resp json.RawMessage
	if err := y.doRequest(ctx, http.MethodPost, endpoint, payload, &resp, true); err != nil {
		return false, fmt.Errorf("failed to add items to playlist %s: %w", playlistID, err)
	}

	var status struct {
		Status string `json:"status"`
	}
	if json.Unmarshal(resp, &status) == nil && status.Status != "" {
		return status.Status == "STATUS_SUCCEEDED", nil
	}

	return len(resp) > 0, nil
}

func dedupePreserveOrder(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func buildSearchResult(item ytSearchItem) *SearchResult {
	artists := make([]string, 0, len(item.Artists))
	for _, a := range item.Artists {
		artists = append(artists, a.Name)
	}

	primary := ""
	if len(artists) > 0 {
		primary = artists[0]
	}

	return &SearchResult{
		VideoID:  item.VideoID,
		Title:    item.Title,
		Artist:   primary,
		Artists:  artists,
		Album:    item.Album.Name,
		Duration: item.Duration,
	}
}
