package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"commonfields/internal/plugins"
	"commonfields/internal/store"
)

// системные ключи, которые клиент не пишет напрямую
var systemKeys = []string{"_id", "__v", "version"}

// POST /api/:module/:entity
func CreateHandler(storage *store.Storage, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		fqn, ok := storage.NormalizeEntityName(c.Param("module"), c.Param("entity"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
			return
		}

		var obj map[string]any
		if err := c.ShouldBindJSON(&obj); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
			return
		}
		for _, k := range systemKeys {
			delete(obj, k)
		}

		rec, err := storage.NewDocument(fqn, obj)
		if err != nil {
			writeError(c, log, err)
			return
		}
		if err := storage.Save(c.Request.Context(), rec); err != nil {
			writeError(c, log, err)
			return
		}
		c.Header("ETag", fmt.Sprintf(`"%d"`, rec.Version))
		c.JSON(http.StatusCreated, storage.ToJSON(rec))
	}
}

// GET /api/:module/:entity
func ListHandler(storage *store.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		fqn, ok := storage.NormalizeEntityName(c.Param("module"), c.Param("entity"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
			return
		}
		all, err := storage.List(fqn)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
			return
		}

		lp := parseListParams(c.Request.URL.Query())
		filtered := filterRecords(all, lp)
		sortRecordsMultiNulls(filtered, lp.Sort, lp.Nulls)

		start := lp.Offset
		if start > len(filtered) {
			start = len(filtered)
		}
		end := start + lp.Limit
		if end > len(filtered) {
			end = len(filtered)
		}

		out := make([]map[string]any, 0, end-start)
		for _, rec := range filtered[start:end] {
			out = append(out, storage.ToJSON(rec))
		}
		c.Header("X-Total-Count", strconv.Itoa(len(filtered)))
		c.JSON(http.StatusOK, out)
	}
}

// GET /api/:module/:entity/:id
func GetOneHandler(storage *store.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		fqn, ok := storage.NormalizeEntityName(c.Param("module"), c.Param("entity"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
			return
		}
		rec, err := storage.Get(fqn, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
			return
		}
		c.Header("ETag", fmt.Sprintf(`"%d"`, rec.Version))
		c.JSON(http.StatusOK, storage.ToJSON(rec))
	}
}

// PATCH /api/:module/:entity/:id
// Ожидаемая версия: If-Match или body.version; без неё берётся последняя.
func UpdatePartialHandler(storage *store.Storage, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		fqn, ok := storage.NormalizeEntityName(c.Param("module"), c.Param("entity"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
			return
		}

		var patch map[string]any
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
			return
		}
		expVer, hasExp := readExpectedVersion(c, patch)
		for _, k := range systemKeys {
			delete(patch, k)
		}

		rec, err := storage.Get(fqn, c.Param("id"))
		if err != nil {
			writeError(c, log, err)
			return
		}
		if hasExp {
			rec.Version = expVer
		}
		store.Assign(storage.Schemas[fqn], rec, patch)

		if err := storage.Save(c.Request.Context(), rec); err != nil {
			writeError(c, log, err)
			return
		}
		c.Header("ETag", fmt.Sprintf(`"%d"`, rec.Version))
		c.JSON(http.StatusOK, storage.ToJSON(rec))
	}
}

// DELETE /api/:module/:entity/:id
func DeleteHandler(storage *store.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		fqn, ok := storage.NormalizeEntityName(c.Param("module"), c.Param("entity"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
			return
		}
		if err := storage.Delete(fqn, c.Param("id")); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func writeError(c *gin.Context, log *zap.Logger, err error) {
	var ve *plugins.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(statusForErrors(ve.Errors), gin.H{"error": ve.Message, "errors": ve.Errors})
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrUnknownEntity):
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
	case errors.Is(err, store.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{
			"errors": []plugins.FieldError{plugins.Ferr(plugins.ErrVersionConflict, "version", err.Error())},
		})
	default:
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

func statusForErrors(errs []plugins.FieldError) int {
	// 409, если есть конфликт уникальности
	for _, e := range errs {
		if e.Code == plugins.ErrUniqueViolation {
			return http.StatusConflict
		}
	}
	return http.StatusBadRequest
}

func readExpectedVersion(c *gin.Context, payload map[string]any) (int64, bool) {
	// 1) If-Match: число, допускаем кавычки и W/
	ifMatch := strings.TrimSpace(c.GetHeader("If-Match"))
	if ifMatch != "" {
		ifMatch = strings.TrimPrefix(ifMatch, "W/")
		ifMatch = strings.Trim(ifMatch, `"'`)
		if v, err := strconv.ParseInt(ifMatch, 10, 64); err == nil {
			return v, true
		}
	}
	// 2) из тела: "version": <int>
	if raw, ok := payload["version"]; ok {
		switch t := raw.(type) {
		case float64:
			return int64(t), true
		case string:
			if v, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}
