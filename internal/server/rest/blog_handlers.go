package rest

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/blogapi/internal/common"
)

type blogRequest struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Body    string `json:"body"`
}

func (h *handler) listBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.blogs.List(r.Context())
	if err != nil {
		h.log.Error(r.Context(), "list blogs failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Error retrieving blogs")
		return
	}
	writeJSON(w, http.StatusOK, blogs)
}

func (h *handler) getBlog(w http.ResponseWriter, r *http.Request) {
	blog, err := h.blogs.Get(r.Context(), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, blog)
	case errors.Is(err, common.ErrorNotFound):
		writeMessage(w, http.StatusNotFound, "Blog not found")
	default:
		h.log.Error(r.Context(), "get blog failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Error retrieving blog")
	}
}

func (h *handler) createBlog(w http.ResponseWriter, r *http.Request) {
	var req blogRequest
	decodeJSON(r, &req)

	blog, err := h.blogs.Create(r.Context(), req.Title, req.Snippet, req.Body)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, blog)
	case errors.Is(err, common.ErrValidation):
		writeMessage(w, http.StatusBadRequest, "All fields are required")
	default:
		h.log.Error(r.Context(), "create blog failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Error creating blog")
	}
}

func (h *handler) updateBlog(w http.ResponseWriter, r *http.Request) {
	var req blogRequest
	decodeJSON(r, &req)

	_, err := h.blogs.Update(r.Context(), chi.URLParam(r, "id"), req.Title, req.Snippet, req.Body)
	switch {
	case err == nil:
		writeMessage(w, http.StatusOK, "Blog updated successfully")
	case errors.Is(err, common.ErrValidation):
		writeMessage(w, http.StatusBadRequest, "All fields are required")
	case errors.Is(err, common.ErrorNotFound):
		writeMessage(w, http.StatusNotFound, "Blog not found")
	default:
		h.log.Error(r.Context(), "update blog failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Error updating blog")
	}
}

func (h *handler) deleteBlog(w http.ResponseWriter, r *http.Request) {
	err := h.blogs.Delete(r.Context(), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		writeMessage(w, http.StatusOK, "Blog deleted successfully")
	case errors.Is(err, common.ErrorNotFound):
		writeMessage(w, http.StatusNotFound, "Blog not found")
	default:
		h.log.Error(r.Context(), "delete blog failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Error deleting blog")
	}
}
