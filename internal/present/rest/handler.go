package rest

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	punchline "github.com/jokehub/punchline"
	"github.com/jokehub/punchline/internal/domain"
	"github.com/jokehub/punchline/internal/present/rest/middleware"
	"github.com/jokehub/punchline/internal/present/rest/presenter"
	"github.com/jokehub/punchline/internal/service"
	"github.com/jokehub/punchline/internal/usecase"
)

type Handler struct {
	jokes    *usecase.JokeUsecase
	comments *usecase.CommentUsecase
	profiles *usecase.ProfileUsecase
	tags     usecase.TagRepository
	signal   *service.SignalService
}

func NewHandler(
	jokes *usecase.JokeUsecase,
	comments *usecase.CommentUsecase,
	profiles *usecase.ProfileUsecase,
	tags usecase.TagRepository,
	signal *service.SignalService,
) *Handler {
	return &Handler{
		jokes:    jokes,
		comments: comments,
		profiles: profiles,
		tags:     tags,
		signal:   signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/jokes", h.handleListJokes)
	e.POST("/jokes", h.handleCreateJoke)
	e.GET("/jokes/:key", h.handleGetJoke)
	e.PUT("/jokes/:key", h.handleUpdateJoke)
	e.DELETE("/jokes/:key", h.handleDeleteJoke)
	e.POST("/jokes/:key/vote", h.handleVoteJoke)
	e.GET("/jokes/:key/comments", h.handleJokeComments)
	e.GET("/comments", h.handleListComments)
	e.POST("/comments", h.handleCreateComment)
	e.PUT("/comments/:key", h.handleUpdateComment)
	e.DELETE("/comments/:key", h.handleDeleteComment)
	e.POST("/comments/:key/vote", h.handleVoteComment)
	e.GET("/tags", h.handleListTags)
	e.GET("/profiles/me", h.handleGetOwnProfile)
	e.POST("/profiles/me", h.handleEnsureProfile)
	e.PUT("/profiles/me", h.handleUpdateProfile)
	e.GET("/profiles/:uid", h.handleGetProfile)
	e.GET("/realtime", h.handleRealtime)
}

// respondError maps the domain error taxonomy onto HTTP statuses.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return presenter.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrAlreadyVoted):
		return presenter.Conflict(c, err)
	case errors.Is(err, domain.ErrValidation):
		return presenter.BadRequest(c, err)
	case errors.Is(err, domain.ErrPermission):
		return presenter.Forbidden(c, err)
	case errors.Is(err, domain.ErrTransport):
		return presenter.BadGateway(c, err)
	default:
		return presenter.InternalError(c, err)
	}
}

func (h *Handler) publish(c echo.Context, event punchline.Event) {
	if h.signal == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	if err := h.signal.Publish(c.Request().Context(), event); err != nil {
		slog.WarnContext(c.Request().Context(), "event publish failed",
			slog.String("type", event.Type),
			slog.String("error", err.Error()),
			slog.String("module", "rest"),
		)
	}
}

// --- views ---
//
// Store keys live outside the record bodies, so responses re-attach
// them explicitly.

type jokeView struct {
	Key string `json:"key"`
	punchline.Joke
}

type commentView struct {
	Key string `json:"key"`
	punchline.Comment
}

type profileView struct {
	Key string `json:"key,omitempty"`
	punchline.Profile
}

type voteView struct {
	Key       string   `json:"key"`
	VoteCount int      `json:"voteCount"`
	VotedBy   []string `json:"votedBy"`
}

func jokeViews(jokes []punchline.Joke) []jokeView {
	out := make([]jokeView, 0, len(jokes))
	for _, j := range jokes {
		out = append(out, jokeView{Key: j.Key, Joke: j})
	}
	return out
}

func commentViews(comments []punchline.Comment) []commentView {
	out := make([]commentView, 0, len(comments))
	for _, cm := range comments {
		out = append(out, commentView{Key: cm.Key, Comment: cm})
	}
	return out
}

// --- jokes ---

func (h *Handler) handleListJokes(c echo.Context) error {
	ctx := c.Request().Context()

	if owner := c.QueryParam("owner"); owner != "" {
		jokes, err := h.jokes.ListByOwner(ctx, owner)
		if err != nil {
			return respondError(c, err)
		}
		return presenter.OK(c, jokeViews(jokes))
	}

	if q := c.QueryParam("q"); q != "" {
		jokes, err := h.jokes.Search(ctx, q)
		if err != nil {
			return respondError(c, err)
		}
		return presenter.OK(c, jokeViews(jokes))
	}

	jokes, err := h.jokes.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, jokeViews(jokes))
}

func (h *Handler) handleCreateJoke(c echo.Context) error {
	ctx := c.Request().Context()

	ident, ok := middleware.RequesterIdentity(ctx)
	if !ok {
		return presenter.Unauthorized(c, "sign in to post")
	}

	var draft punchline.Joke
	if err := c.Bind(&draft); err != nil {
		return presenter.BadRequest(c, err)
	}

	created, err := h.jokes.Create(ctx, ident, draft)
	if err != nil {
		return respondError(c, err)
	}

	h.publish(c, punchline.Event{Type: punchline.EventJokeCreated, Key: created.Key, UID: created.UID})
	return presenter.Created(c, jokeView{Key: created.Key, Joke: created})
}

func (h *Handler) handleGetJoke(c echo.Context) error {
	joke, err := h.jokes.Get(c.Request().Context(), c.Param("key"))
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, jokeView{Key: joke.Key, Joke: joke})
}

func (h *Handler) handleUpdateJoke(c echo.Context) error {
	ctx := c.Request().Context()

	ident, ok := middleware.RequesterIdentity(ctx)
	if !ok {
		return presenter.Unauthorized(c, "sign in to edit")
	}

	var joke punchline.Joke
	if err := c.Bind(&joke); err != nil {
		return presenter.BadRequest(c, err)
	}
	joke.Key = c.Param("key")

	updated, err := h.jokes.Update(ctx, ident, joke)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, jokeView{Key: updated.Key, Joke: updated})
}

func (h *Handler) handleDeleteJoke(c echo.Context) error {
	ctx := c.Request().Context()

	ident, ok := middleware.RequesterIdentity(ctx)
	if !ok {
		return presenter.Unauthorized(c, "sign in to delete")
	}

	key := c.Param("key")
	if err := h.jokes.Delete(ctx, ident, key); err != nil {
		return respondError(c, err)
	}

	h.publish(c, punchline.Event{Type: punchline.EventJokeDeleted, Key: key, UID: ident.UID})
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleVoteJoke(c echo.Context) error {
	ctx := c.Request().Context()

	ident, ok := middleware.RequesterIdentity(ctx)
	if !ok {
		return presenter.Unauthorized(c, "sign in to vote")
	}

	key := c.Param("key")
	state, err := h.jokes.Vote(ctx, key, ident.UID)
	if err != nil {
		return respondError(c, err)
	}

	h.publish(c, punchline.Event{Type: punchline.EventJokeVoted, Key: key, UID: ident.UID, VoteCount: state.Count})
	return presenter.OK(c, voteView{Key: key, VoteCount: state.Count, VotedBy: state.VotedBy})
}

func (h *Handler) handleJokeComments(c echo.Context) error {
	comments, err := h.comments.ListByJoke(c.Request().Context(), c.Param("key"))
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, commentViews(comments))
}

// --- comments ---

func (h *Handler) handleListComments(c echo.Context) error {
	owner := c.QueryParam("owner")
	if owner == "" {
		return presenter.BadRequestMessage(c, "owner parameter is required")
	}
	comments, err := h.comments.ListByOwner(c.Request().Context(), owner)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, commentViews(comments))
}

func (h *Handler) handleCreateComment(c echo.Context) error {
	ctx := c.Request().Context()

	ident, ok := middleware.RequesterIdentity(ctx)
	if !ok {
		return presenter.Unauthorized(c, "sign in to comment")
	}

	var draft punchline.Comment
	if err := c.Bind(&draft); err != nil {
		return presenter.BadRequest(c, err)
	}

	created, err := h.comments.Create(ctx, ident, draft)
	if err != nil {
		return respondError(c, err)
	}

	h.publish(c, punchline.Event{Type: punchline.EventCommentCreated, Key: created.Key, JokeKey: created.JokeKey, UID: created.UID})
	return presenter.Created(c, commentView{Key: created.Key, Comment: created})
}

func (h *Handler) handleUpdateComment(c echo.Context) error {
	ctx := c.Request().Context()

	ident, ok := middleware.RequesterIdentity(ctx)
	if !ok {
		return presenter.Unauthorized(c, "sign in to edit")
	}

	var comment punchline.Comment
	if err := c.Bind(&comment); err != nil {
		return presenter.BadRequest(c, err)
	}
	comment.Key = c.Param("key")

	updated, err := h.comments.Update(ctx, ident, comment)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, commentView{Key: updated.Key, Comment: updated})
}

func (h *Handler) handleDeleteComment(c echo.Context) error {
	ctx := c.Request().Context()

	ident, ok := middleware.RequesterIdentity(ctx)
	if !ok {
		return presenter.Unauthorized(c, "sign in to delete")
	}

	key := c.Param("key")
	if err := h.comments.Delete(ctx, ident, key); err != nil {
		return respondError(c, err)
	}

	h.publish(c, punchline.Event{Type: punchline.EventCommentDeleted, Key: key, UID: ident.UID})
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleVoteComment(c echo.Context) error {
	ctx := c.Request().Context()

	ident, ok := middleware.RequesterIdentity(ctx)
	if !ok {
		return presenter.Unauthorized(c, "sign in to vote")
	}

	key := c.Param("key")
	state, err := h.comments.Vote(ctx, key, ident.UID)
	if err != nil {
		return respondError(c, err)
	}

	h.publish(c, punchline.Event{Type: punchline.EventCommentVoted, Key: key, UID: ident.UID, VoteCount: state.Count})
	return presenter.OK(c, voteView{Key: key, VoteCount: state.Count, VotedBy: state.VotedBy})
}

// --- tags ---

func (h *Handler) handleListTags(c echo.Context) error {
	tags, err := h.tags.All(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	type tagView struct {
		Key   string `json:"key"`
		Label string `json:"label"`
	}
	out := make([]tagView, 0, len(tags))
	for _, tag := range tags {
		out = append(out, tagView{Key: tag.Key, Label: tag.Label})
	}
	return presenter.OK(c, out)
}

// --- profiles ---

// handleGetProfile resolves a public profile. When no profile record
// exists but the identity authored content, a display-only view is
// synthesized from the denormalized author name so the UI never shows
// an unknown user for a real author.
func (h *Handler) handleGetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	uid := c.Param("uid")

	profile, err := h.profiles.ResolveByUID(ctx, uid)
	if err == nil {
		return presenter.OK(c, profileView{Key: profile.Key, Profile: profile})
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return respondError(c, err)
	}

	name, err := h.profiles.DisplayName(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, profileView{Profile: punchline.Profile{UID: uid, Name: name}})
}

func (h *Handler) handleGetOwnProfile(c echo.Context) error {
	ctx := c.Request().Context()

	ident, ok := middleware.RequesterIdentity(ctx)
	if !ok {
		return presenter.Unauthorized(c, "not signed in")
	}

	profile, err := h.profiles.ResolveByUID(ctx, ident.UID)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, profileView{Key: profile.Key, Profile: profile})
}

// handleEnsureProfile is called by the UI right after sign-in
// completes: it resolves the profile, creating one from the provider
// attributes the first time the identity is seen.
func (h *Handler) handleEnsureProfile(c echo.Context) error {
	ctx := c.Request().Context()

	ident, ok := middleware.RequesterIdentity(ctx)
	if !ok {
		return presenter.Unauthorized(c, "not signed in")
	}

	profile, err := h.profiles.Ensure(ctx, ident)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, profileView{Key: profile.Key, Profile: profile})
}

func (h *Handler) handleUpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()

	ident, ok := middleware.RequesterIdentity(ctx)
	if !ok {
		return presenter.Unauthorized(c, "not signed in")
	}

	var profile punchline.Profile
	if err := c.Bind(&profile); err != nil {
		return presenter.BadRequest(c, err)
	}

	current, err := h.profiles.ResolveByUID(ctx, ident.UID)
	if err != nil {
		return respondError(c, err)
	}
	profile.Key = current.Key

	updated, err := h.profiles.Update(ctx, ident, profile)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, profileView{Key: updated.Key, Profile: updated})
}

// --- realtime ---

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type realtimeRequest struct {
	Type  string   `json:"type"`
	Types []string `json:"types"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	if h.signal == nil {
		return presenter.NotFound(c, "realtime feed not configured")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx := c.Request().Context()

	input := make(chan []string)
	defer close(input)
	output := make(chan punchline.Event)

	go h.signal.Realtime(ctx, input, output)

	quit := make(chan struct{})

	go func() {
		for {
			var req realtimeRequest
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				quit <- struct{}{}
				break
			}

			switch req.Type {
			case "listen":
				input <- req.Types
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
