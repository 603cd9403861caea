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

// PostService covers member-authored posts: CRUD plus the paged feeds that
// embed comment previews.
type PostService struct {
	api   Doer
	cache *cache.Policy
	log   logging.Logger
}

func NewPostService(doer Doer, policy *cache.Policy, log logging.Logger) *PostService {
	return &PostService{api: doer, cache: policy, log: log.With("component", "posts")}
}

// Post fetches a single post by id.
func (s *PostService) Post(ctx context.Context, id int64) (models.Post, error) {
	key := cache.KeyOf(cache.KeyPost, id)
	return cache.Fetch(ctx, s.cache.Store(), key, func(ctx context.Context) (models.Post, error) {
		var out models.Post
		err := s.api.Get(ctx, "/post/single/"+strconv.FormatInt(id, 10), nil, &out)
		return out, err
	})
}

// MemberPosts returns the paged query over one member's posts, newest first,
// each carrying its bounded comment preview.
func (s *PostService) MemberPosts(uid string) *paginate.Infinite[models.Post] {
	return paginate.NewInfinite(func(ctx context.Context, page int) ([]models.Post, models.Pagination, error) {
		key := cache.KeyOf(cache.KeyMemberPosts, uid, page)
		res, err := cache.Fetch(ctx, s.cache.Store(), key, func(ctx context.Context) (models.PostsPage, error) {
			var out models.PostsPage
			err := s.api.Get(ctx, "/post/"+uid+"/with_comments", pageQuery(page), &out)
			return out, err
		})
		if err != nil {
			return nil, models.Pagination{}, err
		}
		return res.Posts, res.Pagination, nil
	})
}

// AllPosts returns the paged query over the global post feed.
func (s *PostService) AllPosts() *paginate.Infinite[models.Post] {
	return paginate.NewInfinite(func(ctx context.Context, page int) ([]models.Post, models.Pagination, error) {
		key := cache.KeyOf(cache.KeyPosts, page)
		res, err := cache.Fetch(ctx, s.cache.Store(), key, func(ctx context.Context) (models.PostsPage, error) {
			var out models.PostsPage
			err := s.api.Get(ctx, "/post/all", pageQuery(page), &out)
			return out, err
		})
		if err != nil {
			return nil, models.Pagination{}, err
		}
		return res.Posts, res.Pagination, nil
	})
}

// Create publishes a new post. The image field is always submitted, empty
// when no image was attached.
func (s *PostService) Create(ctx context.Context, form forms.Post) error {
	if err := forms.Validate(form); err != nil {
		return err
	}
	if err := s.api.PostForm(ctx, "/post", postForm(form), nil); err != nil {
		return err
	}
	s.cache.InvalidateFor(ctx, cache.MutationPostCreate)
	return nil
}

// Update edits an existing post.
func (s *PostService) Update(ctx context.Context, id int64, form forms.Post) error {
	if err := forms.Validate(form); err != nil {
		return err
	}
	if err := s.api.PutForm(ctx, "/post/"+strconv.FormatInt(id, 10), postForm(form), nil); err != nil {
		return err
	}
	s.cache.InvalidateFor(ctx, cache.MutationPostUpdate)
	return nil
}

// Delete removes a post.
func (s *PostService) Delete(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, "/post/"+strconv.FormatInt(id, 10), nil); err != nil {
		return err
	}
	s.cache.InvalidateFor(ctx, cache.MutationPostDelete)
	return nil
}

func postForm(form forms.Post) *api.Form {
	body := api.NewForm().
		Set("description", form.Description).
		DeclareFile("image")
	if len(form.Image) > 0 {
		body.File("image", form.ImageName, form.Image)
	}
	return body
}

// pageQuery builds the page parameter every paged list endpoint accepts.
func pageQuery(page int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	return q
}
