package server

import (
	"quill/internal/models"
	"quill/internal/service"
	"quill/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Index handles GET /: all posts, insertion order, author names resolved.
func (s *Server) Index(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext())
	if err != nil {
		return s.renderError(c, err)
	}
	return s.render(c, "index", fiber.Map{
		"Posts": posts,
	})
}

// ShowPost handles GET /post/:id.
func (s *Server) ShowPost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return s.renderError(c, err)
	}

	return s.render(c, "post", fiber.Map{
		"Post":   post,
		"Errors": map[string]string{},
	})
}

// AddComment handles POST /post/:id. Anonymous visitors are redirected to the
// login page with a prompt instead of a hard failure.
func (s *Server) AddComment(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	principal := principalFromCtx(c)
	if !principal.Authenticated() {
		return c.Redirect("/login?prompt=comment", fiber.StatusSeeOther)
	}

	form := validation.CommentForm{Body: c.FormValue("body")}
	if errs := form.Validate(); len(errs) > 0 {
		post, getErr := s.postService.GetPost(c.UserContext(), id)
		if getErr != nil {
			return s.renderError(c, getErr)
		}
		return c.Status(fiber.StatusBadRequest).Render("post", fiber.Map{
			"Post":      post,
			"Errors":    errs,
			"Form":      form,
			"Principal": principal,
		})
	}

	if _, err := s.commentService.AddComment(c.UserContext(), service.AddCommentInput{
		PostID:   id,
		AuthorID: principal.ID(),
		Body:     form.Body,
	}); err != nil {
		return s.renderError(c, err)
	}

	return c.Redirect(c.Path(), fiber.StatusSeeOther)
}

// NewPostPage handles GET /new-post (admin only).
func (s *Server) NewPostPage(c *fiber.Ctx) error {
	return s.render(c, "make-post", fiber.Map{
		"Errors": map[string]string{},
		"Form":   validation.PostForm{},
		"IsEdit": false,
	})
}

// CreatePost handles POST /new-post (admin only).
func (s *Server) CreatePost(c *fiber.Ctx) error {
	form := validation.PostForm{
		Title:    c.FormValue("title"),
		Subtitle: c.FormValue("subtitle"),
		Body:     c.FormValue("body"),
		ImageURL: c.FormValue("image_url"),
	}

	if errs := form.Validate(); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).Render("make-post", fiber.Map{
			"Errors":    errs,
			"Form":      form,
			"IsEdit":    false,
			"Principal": principalFromCtx(c),
		})
	}

	_, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		AuthorID: principalFromCtx(c).ID(),
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Body:     form.Body,
		ImageURL: form.ImageURL,
	})
	if err != nil {
		if models.IsCode(err, models.CodeDuplicateTitle) {
			return c.Status(models.HTTPStatus(err)).Render("make-post", fiber.Map{
				"Errors":    map[string]string{"title": "A post with this title already exists"},
				"Form":      form,
				"IsEdit":    false,
				"Principal": principalFromCtx(c),
			})
		}
		return s.renderError(c, err)
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

// EditPostPage handles GET /edit-post/:id (admin only), prefilled with the
// stored post.
func (s *Server) EditPostPage(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return s.renderError(c, err)
	}

	return s.render(c, "make-post", fiber.Map{
		"Errors": map[string]string{},
		"Form": validation.PostForm{
			Title:    post.Title,
			Subtitle: post.Subtitle,
			Body:     post.Body,
			ImageURL: post.ImageURL,
		},
		"IsEdit": true,
		"PostID": post.ID,
	})
}

// EditPost handles POST /edit-post/:id (admin only). Author and publication
// date are never touched.
func (s *Server) EditPost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	form := validation.PostForm{
		Title:    c.FormValue("title"),
		Subtitle: c.FormValue("subtitle"),
		Body:     c.FormValue("body"),
		ImageURL: c.FormValue("image_url"),
	}

	if errs := form.Validate(); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).Render("make-post", fiber.Map{
			"Errors":    errs,
			"Form":      form,
			"IsEdit":    true,
			"PostID":    id,
			"Principal": principalFromCtx(c),
		})
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		PostID:   id,
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Body:     form.Body,
		ImageURL: form.ImageURL,
	})
	if err != nil {
		if models.IsCode(err, models.CodeDuplicateTitle) {
			return c.Status(models.HTTPStatus(err)).Render("make-post", fiber.Map{
				"Errors":    map[string]string{"title": "A post with this title already exists"},
				"Form":      form,
				"IsEdit":    true,
				"PostID":    id,
				"Principal": principalFromCtx(c),
			})
		}
		return s.renderError(c, err)
	}

	return c.Redirect("/post/"+formatID(post.ID), fiber.StatusSeeOther)
}

// DeletePost handles GET /delete/:id (admin only).
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), id); err != nil {
		return s.renderError(c, err)
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}
