package blogservice

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"github.com/sourcegraph/conc/iter"
	"go.uber.org/multierr"

	"github.com/traveltales/journal/internal/common"
)

// NewBlogService returns a service reading and writing posts through api.
// fanout bounds concurrent per-user fetches; zero means GOMAXPROCS.
func NewBlogService(api *common.APIClient, logger *slog.Logger, metrics *common.Metrics, fanout int) *BlogService {
	if metrics == nil {
		metrics = common.NewTestMetrics()
	}

	return &BlogService{
		m:       newBlogModel(api, logger),
		logger:  logger,
		metrics: metrics,
		fanout:  fanout,
	}
}

type userPosts struct {
	author author
	posts  []postRecord
	err    error
}

// GetAllPosts aggregates every user's posts, newest first. Only a failure
// to list users or a done context is returned; users whose posts cannot be
// fetched are logged and left out.
func (s *BlogService) GetAllPosts(ctx context.Context) ([]Post, error) {
	authors, err := s.m.getAuthors(ctx)
	if err != nil {
		return nil, err
	}

	valid := make([]author, 0, len(authors))
	for _, a := range authors {
		if !a.ID.Valid() {
			s.logger.Warn("skipping user without id", slog.String("username", a.Username))
			continue
		}
		valid = append(valid, a)
	}

	mapper := iter.Mapper[author, userPosts]{MaxGoroutines: s.fanout}
	results := mapper.Map(valid, func(a *author) userPosts {
		posts, err := s.m.getPostsByUserID(ctx, a.ID)
		return userPosts{author: *a, posts: posts, err: err}
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var errs error
	posts := []Post{}
	for _, r := range results {
		if r.err != nil {
			errs = multierr.Append(errs, fmt.Errorf("user %s: %w", r.author.ID, r.err))
			s.metrics.CounterSkippedUsers.Inc()
			continue
		}
		posts = append(posts, s.collect(r.posts, r.author)...)
	}

	if errs != nil {
		s.logger.Warn("failed to fetch posts for some users",
			slog.Int("skipped", len(multierr.Errors(errs))),
			slog.Int("users", len(valid)),
			slog.String("error", errs.Error()))
	}

	sortNewestFirst(posts)

	return posts, nil
}

// GetUserPosts returns one user's posts, newest first. Unlike GetAllPosts
// a fetch failure is returned.
func (s *BlogService) GetUserPosts(ctx context.Context, userID common.ID) ([]Post, error) {
	v := common.NewValidator()
	validateID(v, userID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	records, err := s.m.getPostsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	posts := s.collect(records, author{ID: userID})
	sortNewestFirst(posts)

	return posts, nil
}

// GetFavoritePosts returns the posts whose ids are in favorites.
func (s *BlogService) GetFavoritePosts(ctx context.Context, favorites []string) ([]Post, error) {
	if len(favorites) == 0 {
		return []Post{}, nil
	}

	posts, err := s.GetAllPosts(ctx)
	if err != nil {
		return nil, err
	}

	return Filter(posts, func(p Post) bool { return slices.Contains(favorites, p.ID) }), nil
}

// CreatePost validates in and stores it as a post owned by owner. The
// returned post is normalized.
func (s *BlogService) CreatePost(ctx context.Context, owner Owner, in PostInput) (*Post, error) {
	in = sanitizePostInput(in)

	v := common.NewValidator()
	validateID(v, owner.ID, "user_id")
	validatePostInput(v, in)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	payload := newPayload(in)
	payload.Creator = owner.Name
	payload.Username = owner.Username
	payload.UserID = owner.ID
	payload.CreatedAt = now().UTC().Format(TimestampLayout)

	rec, err := s.m.insert(ctx, owner.ID, payload)
	if err != nil {
		return nil, err
	}

	if rec.ID == "" {
		return nil, ErrInvalidResponse
	}

	post := s.attach(rec.toPost(), author{ID: owner.ID, Name: owner.Name, Username: owner.Username})
	return &post, nil
}

// UpdatePost replaces the editable fields of a post. Requests are always
// scoped to ownerID, so only the owner's posts can be changed.
func (s *BlogService) UpdatePost(ctx context.Context, ownerID common.ID, postID string, in PostInput) (*Post, error) {
	in = sanitizePostInput(in)

	v := common.NewValidator()
	validateID(v, ownerID, "user_id")
	validatePostID(v, postID)
	validatePostInput(v, in)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	rec, err := s.m.update(ctx, ownerID, postID, newPayload(in))
	if err != nil {
		return nil, err
	}

	if rec.ID == "" {
		return nil, ErrInvalidResponse
	}

	post := s.attach(rec.toPost(), author{ID: ownerID})
	return &post, nil
}

// DeletePost deletes one of ownerID's posts.
func (s *BlogService) DeletePost(ctx context.Context, ownerID common.ID, postID string) error {
	v := common.NewValidator()
	validateID(v, ownerID, "user_id")
	validatePostID(v, postID)
	if !v.Valid() {
		return v.ValidationError()
	}

	return s.m.delete(ctx, ownerID, postID)
}

func newPayload(in PostInput) postPayload {
	rating := float64(RatingDefault)
	if in.Rating != nil && *in.Rating != 0 {
		rating = *in.Rating
	}

	return postPayload{
		Name:      in.Name,
		Location:  in.Location,
		Review:    in.Review,
		Rating:    NormalizeRating(rating),
		ImageURL:  in.ImageURL,
		Continent: in.Continent,
	}
}

// collect drops invalid records and normalizes the rest, attributing them
// to a where the record does not say who owns it.
func (s *BlogService) collect(records []postRecord, a author) []Post {
	posts := make([]Post, 0, len(records))
	for _, rec := range records {
		if !rec.valid() {
			s.logger.Warn("skipping invalid post", slog.String("id", string(rec.ID)), slog.String("user_id", a.ID.String()))
			continue
		}
		posts = append(posts, s.attach(rec.toPost(), a))
	}
	return posts
}

func (s *BlogService) attach(p Post, a author) Post {
	if !p.UserID.Valid() {
		p.UserID = a.ID
	}
	if p.Username == "" {
		p.Username = a.Username
	}
	if p.Username == "" {
		p.Username = UnknownUsername
	}
	if p.Creator == "" {
		p.Creator = a.Name
	}
	return p
}

func sortNewestFirst(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt > posts[j].CreatedAt
	})
}
