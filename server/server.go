// Package server exposes the engine over HTTP: the manual group registry
// and the legacy snapshot bulk-load. It is a thin transport: every rule
// lives in the shareline package, the handlers only translate its
// structured rejections onto the wire codes the legacy clients expect
// (409 duplicate_name, 400 category_required).
package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shareline"
	"shareline/store"
)

// Server carries the injected capabilities of the handlers.
type Server struct {
	kv     store.KV
	policy shareline.Policy
	log    *zap.Logger

	// The store has no optimistic-concurrency check: the later write of a
	// racing read-modify-write pair silently wins. The server is a writer,
	// so it serializes its own sequences here.
	mu sync.Mutex
}

// New creates a server over an opened store.
func New(kv store.KV, policy shareline.Policy, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{kv: kv, policy: policy, log: log}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	groups := router.Group("/groups")
	{
		groups.GET("", s.listGroups)
		groups.POST("", s.saveGroup(false))
		groups.PUT("/:id", s.saveGroup(true))
		groups.DELETE("/:id", s.deleteGroup)
	}

	router.POST("/snapshots", s.bulkLoad)
	return router
}

// groupRequest is the wire form of a group save.
type groupRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category"`
	Members  []struct {
		Key  string `json:"key"`
		PAN  string `json:"pan"`
		Name string `json:"name"`
	} `json:"members"`
}

func (s *Server) listGroups(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := shareline.LoadGroups(c.Request.Context(), s.kv)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]shareline.GroupDef, 0, set.Len())
	for g := range set.Groups() {
		out = append(out, g)
	}
	c.JSON(http.StatusOK, gin.H{"groups": out})
}

func (s *Server) saveGroup(update bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req groupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
			return
		}

		def := shareline.GroupDef{Name: req.Name}
		if update {
			def.ID = c.Param("id")
		}
		for _, m := range req.Members {
			key := m.Key
			if key == "" {
				key = shareline.CanonicalKey(m.PAN, m.Name)
			}
			def.Members = append(def.Members, shareline.GroupMember{Key: key, PAN: m.PAN, Name: m.Name})
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		ctx := c.Request.Context()
		reg, err := shareline.LoadRegistry(ctx, s.kv)
		if err != nil {
			s.fail(c, err)
			return
		}
		set, err := shareline.LoadGroups(ctx, s.kv)
		if err != nil {
			s.fail(c, err)
			return
		}
		if update {
			if _, ok := set.Get(def.ID); !ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
				return
			}
		}

		saved, err := set.Save(reg, def, req.Category)
		var dup *shareline.DuplicateNameError
		var ambiguous *shareline.AmbiguousCategoryError
		switch {
		case errors.As(err, &dup):
			c.JSON(http.StatusConflict, gin.H{"error": "duplicate_name"})
			return
		case errors.As(err, &ambiguous):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      "category_required",
				"categories": ambiguous.Categories,
			})
			return
		case err != nil:
			s.fail(c, err)
			return
		}

		if err := shareline.SaveGroups(ctx, s.kv, saved); err != nil {
			s.fail(c, err)
			return
		}
		g, _ := findByName(saved, def.Name)
		c.JSON(http.StatusOK, g)
	}
}

func (s *Server) deleteGroup(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := c.Request.Context()
	set, err := shareline.LoadGroups(ctx, s.kv)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := shareline.SaveGroups(ctx, s.kv, set.Delete(c.Param("id"))); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// snapshotRow is the legacy bulk-load row shape.
type snapshotRow struct {
	Date        string `json:"date" binding:"required"`
	Name        string `json:"name"`
	PAN         string `json:"pan"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Shares      string `json:"shares"`
}

// bulkLoad accepts legacy {date, name, category, shares} rows and merges
// them one snapshot date at a time. The merge's single-date overwrite is
// exactly the replace-by-date contract of the legacy endpoint.
func (s *Server) bulkLoad(c *gin.Context) {
	var rows []snapshotRow
	if err := c.ShouldBindJSON(&rows); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}

	// bucket rows per date, preserving order
	byDate := make(map[shareline.Date][]shareline.Record)
	var order []shareline.Date
	for i, row := range rows {
		on, err := shareline.ParseDate(row.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_date", "date": row.Date})
			return
		}
		name := row.Name
		if name == "" {
			name = shareline.UnknownName(i)
		}
		category := row.Category
		if category == "" {
			category = "Unknown"
		}
		if _, seen := byDate[on]; !seen {
			order = append(order, on)
		}
		byDate[on] = append(byDate[on], shareline.Record{
			Name:        name,
			PAN:         shareline.NormalizePAN(row.PAN),
			Category:    category,
			Description: row.Description,
			Shares:      shareline.ParseShares(row.Shares),
			FundGroup:   shareline.FundGroupKey(name),
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := c.Request.Context()
	reg, err := shareline.LoadRegistry(ctx, s.kv)
	if err != nil {
		s.fail(c, err)
		return
	}
	for _, on := range order {
		records := byDate[on]
		reg = reg.Merge(on, records).LogUpload(shareline.UploadRecord{
			On:         on,
			FileName:   "bulk-load",
			UploadedAt: time.Now(),
			Records:    len(records),
		})
	}
	if err := shareline.SaveRegistry(ctx, s.kv, reg); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dates": len(order), "records": len(rows)})
}

func (s *Server) fail(c *gin.Context, err error) {
	s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
}

func findByName(set *shareline.GroupSet, name string) (shareline.GroupDef, bool) {
	for g := range set.Groups() {
		if g.Name == name {
			return g, true
		}
	}
	return shareline.GroupDef{}, false
}
