package service

import (
	"context"

	"quill/internal/models"
)

// stubUserRepo is an in-memory UserRepository for service tests.
type stubUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[uint]*models.User{}, nextID: 1}
}

func (r *stubUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, models.NewNotFoundError("User", id)
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *stubUserRepo) Create(_ context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return models.NewDuplicateEmailError()
		}
	}
	if len(r.users) == 0 {
		user.IsAdmin = true
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

// stubPostRepo is an in-memory PostRepository for service tests.
type stubPostRepo struct {
	posts  map[uint]*models.BlogPost
	order  []uint
	nextID uint
}

func newStubPostRepo() *stubPostRepo {
	return &stubPostRepo{posts: map[uint]*models.BlogPost{}, nextID: 1}
}

func (r *stubPostRepo) Create(_ context.Context, post *models.BlogPost) error {
	for _, p := range r.posts {
		if p.Title == post.Title {
			return models.NewDuplicateTitleError()
		}
	}
	post.ID = r.nextID
	r.nextID++
	clone := *post
	r.posts[post.ID] = &clone
	r.order = append(r.order, post.ID)
	return nil
}

func (r *stubPostRepo) GetByID(_ context.Context, id uint) (*models.BlogPost, error) {
	if p, ok := r.posts[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, models.NewNotFoundError("Post", id)
}

func (r *stubPostRepo) List(_ context.Context) ([]*models.BlogPost, error) {
	out := make([]*models.BlogPost, 0, len(r.order))
	for _, id := range r.order {
		clone := *r.posts[id]
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubPostRepo) Update(_ context.Context, post *models.BlogPost) error {
	if _, ok := r.posts[post.ID]; !ok {
		return models.NewNotFoundError("Post", post.ID)
	}
	for _, p := range r.posts {
		if p.ID != post.ID && p.Title == post.Title {
			return models.NewDuplicateTitleError()
		}
	}
	clone := *post
	r.posts[post.ID] = &clone
	return nil
}

func (r *stubPostRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.posts[id]; !ok {
		return models.NewNotFoundError("Post", id)
	}
	delete(r.posts, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// stubCommentRepo is an in-memory CommentRepository for service tests.
type stubCommentRepo struct {
	comments map[uint]*models.Comment
	order    []uint
	nextID   uint
}

func newStubCommentRepo() *stubCommentRepo {
	return &stubCommentRepo{comments: map[uint]*models.Comment{}, nextID: 1}
}

func (r *stubCommentRepo) Create(_ context.Context, comment *models.Comment) error {
	comment.ID = r.nextID
	r.nextID++
	clone := *comment
	r.comments[comment.ID] = &clone
	r.order = append(r.order, comment.ID)
	return nil
}

func (r *stubCommentRepo) GetByID(_ context.Context, id uint) (*models.Comment, error) {
	if c, ok := r.comments[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, models.NewNotFoundError("Comment", id)
}

func (r *stubCommentRepo) ListByPost(_ context.Context, postID uint) ([]*models.Comment, error) {
	var out []*models.Comment
	for _, id := range r.order {
		if r.comments[id].PostID == postID {
			clone := *r.comments[id]
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubCommentRepo) CountByPost(_ context.Context, postID uint) (int64, error) {
	var n int64
	for _, c := range r.comments {
		if c.PostID == postID {
			n++
		}
	}
	return n, nil
}
