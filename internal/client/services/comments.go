package services

import (
	"context"
	"net/url"
	"strconv"

	"github.com/llwyd-bot123/opencircle-client/internal/client/api"
	"github.com/llwyd-bot123/opencircle-client/internal/client/cache"
	"github.com/llwyd-bot123/opencircle-client/internal/client/forms"
	"github.com/llwyd-bot123/opencircle-client/internal/client/models"
	"github.com/llwyd-bot123/opencircle-client/internal/client/paginate"
	"github.com/llwyd-bot123/opencircle-client/internal/logging"
)

// CommentTarget names the resource a comment thread hangs off.
type CommentTarget string

const (
	TargetPost  CommentTarget = "post"
	TargetEvent CommentTarget = "event"
)

// DefaultCommentPageSize is the limit used by the paged thread query.
const DefaultCommentPageSize = 10

// CommentService covers post- and event-scoped comment threads.
type CommentService struct {
	api   Doer
	cache *cache.Policy
	log   logging.Logger
}

func NewCommentService(doer Doer, policy *cache.Policy, log logging.Logger) *CommentService {
	return &CommentService{api: doer, cache: policy, log: log.With("component", "comments")}
}

// List fetches one window of a comment thread with limit/offset paging.
func (s *CommentService) List(ctx context.Context, target CommentTarget, id int64, limit, offset int) (models.CommentsPage, error) {
	prefix := cache.KeyPostComments
	if target == TargetEvent {
		prefix = cache.KeyEventComments
	}
	key := cache.KeyOf(prefix, id, limit, offset)
	return cache.Fetch(ctx, s.cache.Store(), key, func(ctx context.Context) (models.CommentsPage, error) {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(limit))
		q.Set("offset", strconv.Itoa(offset))
		var out models.CommentsPage
		err := s.api.Get(ctx, "/comment/"+string(target)+"/"+strconv.FormatInt(id, 10), q, &out)
		return out, err
	})
}

// Thread returns the paged query over a thread. The query stays disabled, and
// issues no request, until idFn reports a real content id.
func (s *CommentService) Thread(target CommentTarget, idFn func() int64) *paginate.Infinite[models.Comment] {
	fetch := func(ctx context.Context, page int) ([]models.Comment, models.Pagination, error) {
		id := idFn()
		limit := DefaultCommentPageSize
		res, err := s.List(ctx, target, id, limit, (page-1)*limit)
		if err != nil {
			return nil, models.Pagination{}, err
		}
		return res.Comments, threadPagination(page, res), nil
	}
	return paginate.NewInfinite(fetch, paginate.WithEnabled[models.Comment](func() bool {
		return idFn() != 0
	}))
}

// threadPagination maps the thread's limit/offset window onto page metadata.
func threadPagination(page int, res models.CommentsPage) models.Pagination {
	pages := page
	if res.HasMore {
		pages = page + 1
	}
	return models.Pagination{Page: page, Pages: pages, Total: res.Total}
}

// Create posts a comment on the target named by the form's foreign key.
func (s *CommentService) Create(ctx context.Context, form forms.Comment) error {
	if err := form.Validate(); err != nil {
		return err
	}
	body := api.NewForm().Set("message", form.Message)
	if form.PostID != 0 {
		body.SetInt("post_id", form.PostID)
		if err := s.api.PostForm(ctx, "/comment/post/", body, nil); err != nil {
			return err
		}
		s.cache.InvalidateFor(ctx, cache.MutationPostCommentCreate)
		return nil
	}
	body.SetInt("event_id", form.EventID)
	if err := s.api.PostForm(ctx, "/comment/event/", body, nil); err != nil {
		return err
	}
	s.cache.InvalidateFor(ctx, cache.MutationEventCommentCreate)
	return nil
}

// Edit replaces a comment's message.
func (s *CommentService) Edit(ctx context.Context, target CommentTarget, commentID int64, message string) error {
	if message == "" {
		return &forms.Error{Fields: []forms.FieldError{{Field: "Message", Rule: "required"}}}
	}
	body := api.NewForm().Set("message", message)
	if err := s.api.PutForm(ctx, "/comment/"+string(target)+"/"+strconv.FormatInt(commentID, 10), body, nil); err != nil {
		return err
	}
	s.cache.InvalidateFor(ctx, cache.MutationCommentEdit)
	return nil
}

// Delete removes a comment.
func (s *CommentService) Delete(ctx context.Context, commentID int64) error {
	if err := s.api.Delete(ctx, "/comment/"+strconv.FormatInt(commentID, 10), nil); err != nil {
		return err
	}
	s.cache.InvalidateFor(ctx, cache.MutationCommentDelete)
	return nil
}
