package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"secboard/internal/store"
	"secboard/pkg/models"
)

// ListJobsHandler serves the published job collection with optional
// category and free-text filters plus pagination. It always reads one
// complete snapshot, so a refresh running concurrently is invisible here.
func ListJobsHandler(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		query := store.Query{
			Category: c.QueryParam("category"),
			Search:   c.QueryParam("search"),
		}

		if raw := c.QueryParam("page"); raw != "" {
			page, err := strconv.Atoi(raw)
			if err != nil || page < 1 {
				return errorResponse(c, http.StatusBadRequest, "invalid_page", "page must be a positive integer")
			}
			query.Page = page
		}

		if raw := c.QueryParam("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 1 {
				return errorResponse(c, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			}
			query.Limit = limit
		}

		jobs, pagination := st.Run(query)

		return c.JSON(http.StatusOK, models.JobListResponse{
			Jobs:       jobs,
			Pagination: pagination,
		})
	}
}

// CategoriesHandler serves per-category job counts from the published
// snapshot.
func CategoriesHandler(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, models.CategoryCountsResponse{
			Categories: st.CategoryCounts(),
		})
	}
}
