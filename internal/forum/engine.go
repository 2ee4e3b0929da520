// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

// Package forum implements the per-board discussion threads: articles,
// their comments, the B1..Bn floor numbering and the derived comment count.
//
// Floors are positions in the chronological comment order and are
// recomputed on every load; they are never stored. An article's commentsNum
// is rewritten from the live comment count after every comment change.
//
// The engine keeps the last successfully loaded board listing and thread in
// memory. A failed load returns that snapshot together with the error.
package forum

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/dramalog/internal/apperr"
	"github.com/tomtom215/dramalog/internal/events"
	"github.com/tomtom215/dramalog/internal/gateway"
	"github.com/tomtom215/dramalog/internal/logging"
	"github.com/tomtom215/dramalog/internal/metrics"
	"github.com/tomtom215/dramalog/internal/models"
	"github.com/tomtom215/dramalog/internal/profiles"
	"github.com/tomtom215/dramalog/internal/validation"
)

// ArticlesCollection holds forum articles.
const ArticlesCollection = "articles"

var (
	// ErrArticleNotFound is returned for unknown article ids.
	ErrArticleNotFound = fmt.Errorf("article: %w", apperr.ErrNotFound)

	// ErrCommentNotFound is returned for unknown comment ids.
	ErrCommentNotFound = fmt.Errorf("comment: %w", apperr.ErrNotFound)
)

// Thread is an article with its numbered comments.
type Thread struct {
	Article  models.ArticleView   `json:"article"`
	Comments []models.CommentView `json:"comments"`
}

// ArticleRequest is a new or edited article.
type ArticleRequest struct {
	Type    string `json:"type" validate:"notblank,max=30"`
	Title   string `json:"title" validate:"notblank,max=100"`
	Content string `json:"content" validate:"required"`
}

// Engine loads and writes forum documents.
type Engine struct {
	gw        gateway.Gateway
	resolver  *profiles.Resolver
	publisher events.Publisher
	now       func() time.Time
	newID     func() string

	mu      sync.RWMutex
	boards  map[models.DramaType][]models.ArticleView
	threads map[string]*Thread
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides the time-ordered ids of new articles and
// comments. Comments with equal dates are ordered by id, so generated ids
// must increase.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// newOrderedID returns a uuid v7. Its string form sorts in creation order,
// including within one millisecond.
func newOrderedID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewEngine creates a forum engine. publisher may be nil.
func NewEngine(gw gateway.Gateway, resolver *profiles.Resolver, publisher events.Publisher, opts ...Option) *Engine {
	if publisher == nil {
		publisher = events.Nop{}
	}
	e := &Engine{
		gw:        gw,
		resolver:  resolver,
		publisher: publisher,
		now:       time.Now,
		newID:     newOrderedID,
		boards:    make(map[models.DramaType][]models.ArticleView),
		threads:   make(map[string]*Thread),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func articlePath(articleID string) string {
	return gateway.Join(ArticlesCollection, articleID)
}

func commentsPath(articleID string) string {
	return gateway.Join(ArticlesCollection, articleID, "comments")
}

func commentPath(articleID, commentID string) string {
	return gateway.Join(ArticlesCollection, articleID, "comments", commentID)
}

func parseBoard(board string) (models.DramaType, error) {
	t, ok := models.ParseDramaType(board)
	if !ok {
		return "", apperr.Invalid("board", "unknown board %q", board)
	}
	return t, nil
}

// LoadThread returns the articles of a board, newest first.
func (e *Engine) LoadThread(ctx context.Context, board string) ([]models.ArticleView, error) {
	boardType, err := parseBoard(board)
	if err != nil {
		return nil, err
	}

	articles, err := e.loadBoard(ctx, boardType)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("board", board).Msg("failed to load board")
		e.mu.RLock()
		cached := e.boards[boardType]
		e.mu.RUnlock()
		return cached, err
	}

	e.mu.Lock()
	e.boards[boardType] = articles
	e.mu.Unlock()
	return articles, nil
}

func (e *Engine) loadBoard(ctx context.Context, board models.DramaType) ([]models.ArticleView, error) {
	docs, err := e.gw.QueryCollection(ctx, ArticlesCollection, gateway.Filter{
		Field: "board",
		Op:    gateway.OpEquals,
		Value: string(board),
	})
	if err != nil {
		return nil, err
	}
	articles, err := gateway.DecodeAll[models.Article](docs)
	if err != nil {
		return nil, err
	}

	authorIDs := make([]string, len(articles))
	for i, a := range articles {
		authorIDs[i] = a.AuthorID
	}
	authors, err := e.resolver.Resolve(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.ArticleView, len(articles))
	for i, a := range articles {
		views[i] = articleView(a, authors[a.AuthorID])
	}
	sort.SliceStable(views, func(i, j int) bool { return views[i].Date > views[j].Date })
	return views, nil
}

func articleView(a models.Article, author models.Profile) models.ArticleView {
	return models.ArticleView{
		Article:      a,
		AuthorName:   author.UserName,
		AuthorAvatar: author.Avatar,
		Excerpt:      Excerpt(a.Content),
	}
}

// LoadArticle returns an article and its comments with floors assigned.
func (e *Engine) LoadArticle(ctx context.Context, articleID string) (*Thread, error) {
	if articleID == "" {
		return nil, apperr.Invalid("articleId", "article id is required")
	}

	thread, err := e.loadThread(ctx, articleID)
	if err != nil {
		if !errors.Is(err, ErrArticleNotFound) {
			logging.Ctx(ctx).Error().Err(err).Str("article_id", articleID).Msg("failed to load article")
		}
		return e.cachedThread(articleID), err
	}

	e.mu.Lock()
	e.threads[articleID] = thread
	e.mu.Unlock()
	return thread, nil
}

// LoadComments returns the comments of an article in chronological order,
// numbered from B1.
func (e *Engine) LoadComments(ctx context.Context, articleID string) ([]models.CommentView, error) {
	thread, err := e.LoadArticle(ctx, articleID)
	if thread == nil {
		return nil, err
	}
	return thread.Comments, err
}

func (e *Engine) cachedThread(articleID string) *Thread {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.threads[articleID]
}

func (e *Engine) loadThread(ctx context.Context, articleID string) (*Thread, error) {
	article, err := e.getArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	comments, err := e.fetchComments(ctx, articleID)
	if err != nil {
		return nil, err
	}

	authorIDs := make([]string, 0, len(comments)+1)
	authorIDs = append(authorIDs, article.AuthorID)
	for _, c := range comments {
		authorIDs = append(authorIDs, c.AuthorID)
	}
	authors, err := e.resolver.Resolve(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	thread := &Thread{
		Article:  articleView(*article, authors[article.AuthorID]),
		Comments: make([]models.CommentView, len(comments)),
	}
	for i, c := range comments {
		author := authors[c.AuthorID]
		thread.Comments[i] = models.CommentView{
			Comment:      c,
			AuthorName:   author.UserName,
			AuthorAvatar: author.Avatar,
			Floor:        i + 1,
			FloorLabel:   models.FloorLabel(i + 1),
		}
	}
	return thread, nil
}

func (e *Engine) getArticle(ctx context.Context, articleID string) (*models.Article, error) {
	doc, err := e.gw.GetDocument(ctx, articlePath(articleID))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrArticleNotFound
	}
	return gateway.DecodeAs[models.Article](doc)
}

// fetchComments returns comments by date, ties broken by id.
func (e *Engine) fetchComments(ctx context.Context, articleID string) ([]models.Comment, error) {
	docs, err := e.gw.GetCollection(ctx, commentsPath(articleID))
	if err != nil {
		return nil, err
	}
	comments, err := gateway.DecodeAll[models.Comment](docs)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		comments[i].ID = docs[i].ID
	}
	sort.SliceStable(comments, func(i, j int) bool {
		if comments[i].Date != comments[j].Date {
			return comments[i].Date < comments[j].Date
		}
		return comments[i].ID < comments[j].ID
	})
	return comments, nil
}

// syncCommentCount rewrites commentsNum from the live comment count.
func (e *Engine) syncCommentCount(ctx context.Context, articleID string) (int, error) {
	docs, err := e.gw.GetCollection(ctx, commentsPath(articleID))
	if err != nil {
		return 0, err
	}
	count := len(docs)
	if err := e.gw.UpdateDocument(ctx, articlePath(articleID), map[string]any{"commentsNum": count}); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return 0, ErrArticleNotFound
		}
		return 0, err
	}
	return count, nil
}

func (e *Engine) reject(reason string, err error) error {
	metrics.RecordForumRejection(reason)
	return err
}

// PostComment appends a comment to an article. Every floor reference in
// text must name an existing comment; otherwise nothing is written.
func (e *Engine) PostComment(ctx context.Context, userID, articleID, text string) (*Thread, error) {
	if userID == "" {
		return nil, e.reject("sign_in", apperr.ErrSignInRequired)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, e.reject("empty", apperr.Invalid("text", "comment must not be empty"))
	}
	if articleID == "" {
		return nil, apperr.Invalid("articleId", "article id is required")
	}
	log := logging.CtxWith(ctx).Str("article_id", articleID).Logger()

	if _, err := e.getArticle(ctx, articleID); err != nil {
		return e.cachedThread(articleID), err
	}
	existing, err := e.gw.GetCollection(ctx, commentsPath(articleID))
	if err != nil {
		log.Error().Err(err).Msg("failed to count comments")
		return e.cachedThread(articleID), err
	}
	if err := ValidateFloorRefs(text, len(existing)); err != nil {
		return nil, e.reject("invalid_floor", err)
	}

	comment := models.Comment{
		ID:       e.newID(),
		AuthorID: userID,
		Date:     e.now().UnixMilli(),
		Text:     text,
	}
	if err := e.gw.SetDocument(ctx, commentPath(articleID, comment.ID), comment, false); err != nil {
		log.Error().Err(err).Msg("failed to post comment")
		return e.cachedThread(articleID), err
	}

	count, err := e.syncCommentCount(ctx, articleID)
	if err != nil {
		log.Error().Err(err).Str("comment_id", comment.ID).Msg("failed to update comment count")
		return e.cachedThread(articleID), err
	}
	metrics.RecordForumOperation("post_comment")
	log.Info().Str("comment_id", comment.ID).Int("comments_num", count).Msg("comment posted")

	e.publisher.Publish(events.TypeCommentPosted, events.CommentChanged{
		ArticleID:   articleID,
		CommentID:   comment.ID,
		CommentsNum: count,
	})
	return e.LoadArticle(ctx, articleID)
}

// ownComment loads a comment and checks that userID wrote it.
func (e *Engine) ownComment(ctx context.Context, userID, articleID, commentID string) (*models.Comment, error) {
	if userID == "" {
		return nil, e.reject("sign_in", apperr.ErrSignInRequired)
	}
	if articleID == "" || commentID == "" {
		return nil, apperr.Invalid("commentId", "article and comment ids are required")
	}
	doc, err := e.gw.GetDocument(ctx, commentPath(articleID, commentID))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrCommentNotFound
	}
	comment, err := gateway.DecodeAs[models.Comment](doc)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != userID {
		return nil, e.reject("forbidden", apperr.ErrForbidden)
	}
	return comment, nil
}

// EditComment replaces the text of the caller's own comment. Floor
// references are checked against the article's current comment count.
func (e *Engine) EditComment(ctx context.Context, userID, articleID, commentID, text string) (*Thread, error) {
	text = strings.TrimSpace(text)
	if userID != "" && text == "" {
		return nil, e.reject("empty", apperr.Invalid("text", "comment must not be empty"))
	}
	if _, err := e.ownComment(ctx, userID, articleID, commentID); err != nil {
		return nil, err
	}

	existing, err := e.gw.GetCollection(ctx, commentsPath(articleID))
	if err != nil {
		return e.cachedThread(articleID), err
	}
	if err := ValidateFloorRefs(text, len(existing)); err != nil {
		return nil, e.reject("invalid_floor", err)
	}

	if err := e.gw.UpdateDocument(ctx, commentPath(articleID, commentID), map[string]any{"text": text}); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("article_id", articleID).Str("comment_id", commentID).Msg("failed to edit comment")
		return e.cachedThread(articleID), err
	}
	metrics.RecordForumOperation("edit_comment")
	return e.LoadArticle(ctx, articleID)
}

// DeleteComment removes the caller's own comment and rewrites commentsNum.
// Later comments move up one floor.
func (e *Engine) DeleteComment(ctx context.Context, userID, articleID, commentID string) (*Thread, error) {
	if _, err := e.ownComment(ctx, userID, articleID, commentID); err != nil {
		return nil, err
	}
	log := logging.CtxWith(ctx).Str("article_id", articleID).Str("comment_id", commentID).Logger()

	if err := e.gw.DeleteDocument(ctx, commentPath(articleID, commentID)); err != nil {
		log.Error().Err(err).Msg("failed to delete comment")
		return e.cachedThread(articleID), err
	}
	count, err := e.syncCommentCount(ctx, articleID)
	if err != nil {
		log.Error().Err(err).Msg("failed to update comment count")
		return e.cachedThread(articleID), err
	}
	metrics.RecordForumOperation("delete_comment")

	e.publisher.Publish(events.TypeCommentDeleted, events.CommentChanged{
		ArticleID:   articleID,
		CommentID:   commentID,
		CommentsNum: count,
	})
	return e.LoadArticle(ctx, articleID)
}

func validateArticle(req *ArticleRequest) error {
	if verr := validation.ValidateStruct(req); verr != nil {
		return verr
	}
	text, err := VisibleText(req.Content)
	if err != nil {
		return apperr.Invalid("content", "content is not valid HTML")
	}
	if text == "" {
		return apperr.Invalid("content", "content must contain visible text")
	}
	return nil
}

// CreateArticle posts a new article on a board.
func (e *Engine) CreateArticle(ctx context.Context, userID, board string, req ArticleRequest) (*Thread, error) {
	if userID == "" {
		return nil, e.reject("sign_in", apperr.ErrSignInRequired)
	}
	boardType, err := parseBoard(board)
	if err != nil {
		return nil, err
	}
	if err := validateArticle(&req); err != nil {
		return nil, e.reject("invalid_article", err)
	}

	article := models.Article{
		ID:       e.newID(),
		Board:    boardType,
		Type:     strings.TrimSpace(req.Type),
		Title:    strings.TrimSpace(req.Title),
		AuthorID: userID,
		Content:  req.Content,
		Date:     e.now().UnixMilli(),
	}
	if err := e.gw.SetDocument(ctx, articlePath(article.ID), article, false); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("board", board).Msg("failed to create article")
		return nil, err
	}
	metrics.RecordForumOperation("create_article")
	logging.Ctx(ctx).Info().Str("article_id", article.ID).Str("board", board).Msg("article posted")

	e.publisher.Publish(events.TypeArticlePosted, events.ArticlePosted{
		ArticleID: article.ID,
		Board:     string(boardType),
		Title:     article.Title,
	})
	return e.LoadArticle(ctx, article.ID)
}

func (e *Engine) ownArticle(ctx context.Context, userID, articleID string) (*models.Article, error) {
	if userID == "" {
		return nil, e.reject("sign_in", apperr.ErrSignInRequired)
	}
	article, err := e.getArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if article.AuthorID != userID {
		return nil, e.reject("forbidden", apperr.ErrForbidden)
	}
	return article, nil
}

// EditArticle replaces the type, title and content of the caller's article.
func (e *Engine) EditArticle(ctx context.Context, userID, articleID string, req ArticleRequest) (*Thread, error) {
	if userID == "" {
		return nil, e.reject("sign_in", apperr.ErrSignInRequired)
	}
	if err := validateArticle(&req); err != nil {
		return nil, e.reject("invalid_article", err)
	}
	if _, err := e.ownArticle(ctx, userID, articleID); err != nil {
		return nil, err
	}

	err := e.gw.UpdateDocument(ctx, articlePath(articleID), map[string]any{
		"type":    strings.TrimSpace(req.Type),
		"title":   strings.TrimSpace(req.Title),
		"content": req.Content,
	})
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("article_id", articleID).Msg("failed to edit article")
		return e.cachedThread(articleID), err
	}
	metrics.RecordForumOperation("edit_article")
	return e.LoadArticle(ctx, articleID)
}

// DeleteArticle removes the caller's article and all of its comments.
func (e *Engine) DeleteArticle(ctx context.Context, userID, articleID string) error {
	article, err := e.ownArticle(ctx, userID, articleID)
	if err != nil {
		return err
	}
	log := logging.CtxWith(ctx).Str("article_id", articleID).Logger()

	comments, err := e.gw.GetCollection(ctx, commentsPath(articleID))
	if err != nil {
		return err
	}
	for _, c := range comments {
		if err := e.gw.DeleteDocument(ctx, c.Path); err != nil {
			log.Error().Err(err).Str("comment_id", c.ID).Msg("failed to delete comment of article")
			return err
		}
	}
	if err := e.gw.DeleteDocument(ctx, articlePath(articleID)); err != nil {
		log.Error().Err(err).Msg("failed to delete article")
		return err
	}
	metrics.RecordForumOperation("delete_article")

	e.mu.Lock()
	delete(e.threads, articleID)
	if board := e.boards[article.Board]; board != nil {
		kept := make([]models.ArticleView, 0, len(board))
		for _, a := range board {
			if a.ID != articleID {
				kept = append(kept, a)
			}
		}
		e.boards[article.Board] = kept
	}
	e.mu.Unlock()

	log.Info().Int("comments_removed", len(comments)).Msg("article deleted")
	return nil
}
