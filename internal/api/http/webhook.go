package httpapi

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/google/go-github/v71/github"
	"github.com/google/uuid"

	"github.com/paveldruzyak/commodus/internal/domain/event"
)

var ErrSignatureInvalid = errors.New("webhook signature invalid")

const (
	eventHeader    = "X-GitHub-Event"
	deliveryHeader = "X-GitHub-Delivery"

	// GitHub caps webhook payloads at 25 MB.
	maxPayloadBytes = 25 << 20

	thresholdParam = "required_plus_ones"
)

// readPayload authenticates the request body against the shared secret and
// returns the JSON payload. Form encoded deliveries are unwrapped.
func (s *Server) readPayload(r *http.Request) ([]byte, error) {
	contentType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("%w: content type: %v", event.ErrMalformedPayload, err)
	}
	switch contentType {
	case "application/json", "application/x-www-form-urlencoded":
	default:
		return nil, fmt.Errorf("%w: unsupported content type %q", event.ErrMalformedPayload, contentType)
	}

	var secret []byte
	if !s.webhook.InsecureSkipVerify {
		if s.webhook.Secret == "" {
			return nil, fmt.Errorf("%w: no webhook secret configured", ErrSignatureInvalid)
		}
		secret = []byte(s.webhook.Secret)
	}
	signature := r.Header.Get(github.SHA256SignatureHeader)
	if signature == "" {
		signature = r.Header.Get(github.SHA1SignatureHeader)
	}
	if secret != nil && signature == "" {
		return nil, fmt.Errorf("%w: missing %s header", ErrSignatureInvalid, github.SHA256SignatureHeader)
	}

	body := http.MaxBytesReader(nil, r.Body, maxPayloadBytes)
	payload, err := github.ValidatePayloadFromBody(contentType, body, signature, secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
	return payload, nil
}

// decodeEvent maps a GitHub delivery onto an event.Event. Deliveries the
// review service does not react to come back as KindIgnored.
func decodeEvent(r *http.Request, payload []byte) (event.Event, error) {
	eventType := github.WebHookType(r)
	if eventType == "" {
		return event.Event{}, fmt.Errorf("%w: missing %s header", event.ErrMalformedPayload, eventHeader)
	}
	ev := event.Event{Kind: event.KindIgnored, DeliveryID: github.DeliveryID(r)}
	if ev.DeliveryID == "" {
		ev.DeliveryID = uuid.NewString()
	}

	override, err := parseThreshold(r)
	if err != nil {
		return event.Event{}, err
	}
	ev.RequiredPlusOnes = override

	switch eventType {
	case "ping", "pull_request", "issue_comment":
	default:
		return ev, nil
	}

	raw, err := github.ParseWebHook(eventType, payload)
	if err != nil {
		return event.Event{}, fmt.Errorf("%w: %v", event.ErrMalformedPayload, err)
	}

	switch e := raw.(type) {
	case *github.PingEvent:
		ev.Kind = event.KindPing
	case *github.PullRequestEvent:
		ev.Kind = event.Classify(eventType, e.GetAction())
		ev.Repo = e.GetRepo().GetFullName()
		ev.Number = e.GetNumber()
		if ev.Number == 0 {
			ev.Number = e.GetPullRequest().GetNumber()
		}
		ev.HeadSHA = e.GetPullRequest().GetHead().GetSHA()
		ev.Creator = e.GetPullRequest().GetUser().GetLogin()
	case *github.IssueCommentEvent:
		// Plain issues share the comment event with pull requests.
		if e.GetIssue().GetPullRequestLinks() == nil {
			return ev, nil
		}
		ev.Kind = event.Classify(eventType, e.GetAction())
		ev.Repo = e.GetRepo().GetFullName()
		ev.Number = e.GetIssue().GetNumber()
		ev.Commenter = e.GetComment().GetUser().GetLogin()
		ev.Body = e.GetComment().GetBody()
	}
	return ev, nil
}

// parseThreshold reads the optional per-event threshold override. Values of
// zero or below mean no override.
func parseThreshold(r *http.Request) (int, error) {
	v := r.URL.Query().Get(thresholdParam)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", event.ErrMalformedPayload, thresholdParam)
	}
	if n < 0 {
		n = 0
	}
	return n, nil
}
