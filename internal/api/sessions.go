package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"catalog-picker/internal/models"
	"catalog-picker/internal/service"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

type hostContextRequest struct {
	Context json.RawMessage `json:"context"`
}

type manufacturerSearchRequest struct {
	Term string `json:"term"`
}

type manufacturerRequest struct {
	Name string `json:"name"`
}

type filterRequest struct {
	Value string `json:"value"`
}

type keywordRequest struct {
	Keyword string `json:"keyword"`
}

type readyRequest struct {
	Token string `json:"token" binding:"required"`
}

type toggleRequest struct {
	Identity string `json:"identity" binding:"required"`
	Selected bool   `json:"selected"`
}

type toggleAllRequest struct {
	Selected bool `json:"selected"`
}

type reorderRequest struct {
	Identities []string `json:"identities" binding:"required"`
}

type reorderGroupsRequest struct {
	Manufacturers []string `json:"manufacturers" binding:"required"`
}

type groupingRequest struct {
	Grouped bool `json:"grouped"`
}

type distributorRequest struct {
	ID string `json:"id" binding:"required"`
}

// loadSession resolves :id and stores the session on the context
func (h *Handler) loadSession(c *gin.Context) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, "Session not found", err)
		c.Abort()
		return
	}
	c.Set(sessionKey, s)
	c.Next()
}

func parseDimension(c *gin.Context) (models.Dimension, bool) {
	dim, ok := models.ParseDimension(c.Param("dimension"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Unknown filter",
			"details": c.Param("dimension"),
		})
	}
	return dim, ok
}

func session(c *gin.Context) *service.Session {
	return c.MustGet(sessionKey).(*service.Session)
}

func (h *Handler) listDistributors(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"distributors": models.Distributors})
}

func (h *Handler) createSession(c *gin.Context) {
	s := h.sessions.Create()
	c.JSON(http.StatusCreated, s.Snapshot())
}

func (h *Handler) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, session(c).Snapshot())
}

func (h *Handler) closeSession(c *gin.Context) {
	h.sessions.Close(session(c).ID())
	c.Status(http.StatusNoContent)
}

func (h *Handler) hostStarted(c *gin.Context) {
	var req hostContextRequest
	if !h.bindJSON(c, &req) {
		return
	}
	s := session(c)
	s.HandleStarted(req.Context)
	c.JSON(http.StatusOK, s.Snapshot())
}

func (h *Handler) hostReady(c *gin.Context) {
	var req readyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	s := session(c)
	s.HandleReady(req.Token)
	c.JSON(http.StatusOK, gin.H{"connected": s.Connected()})
}

// searchManufacturers schedules a debounced search; results show up in
// the suggestions list once it fires
func (h *Handler) searchManufacturers(c *gin.Context) {
	var req manufacturerSearchRequest
	if !h.bindJSON(c, &req) {
		return
	}
	s := session(c)
	s.SearchManufacturers(req.Term)
	c.JSON(http.StatusAccepted, gin.H{"manufacturers": s.ManufacturerSuggestions()})
}

func (h *Handler) manufacturerSuggestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"manufacturers": session(c).ManufacturerSuggestions()})
}

func (h *Handler) selectManufacturer(c *gin.Context) {
	var req manufacturerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	s := session(c)
	s.SelectManufacturer(req.Name)
	c.JSON(http.StatusOK, gin.H{"filter": s.Filter()})
}

func (h *Handler) setFilter(c *gin.Context) {
	dim, ok := parseDimension(c)
	if !ok {
		return
	}
	var req filterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	s := session(c)
	if err := s.SetFilter(dim, req.Value); err != nil {
		h.respondError(c, "Failed to set filter", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"filter": s.Filter()})
}

func (h *Handler) searchKeyword(c *gin.Context) {
	var req keywordRequest
	if !h.bindJSON(c, &req) {
		return
	}
	s := session(c)
	if err := s.SearchKeyword(req.Keyword); err != nil {
		h.respondError(c, "Failed to set keyword", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"filter": s.Filter()})
}

func (h *Handler) dimensionOptions(c *gin.Context) {
	dim, ok := parseDimension(c)
	if !ok {
		return
	}
	values, err := session(c).LoadDimensionOptions(c.Request.Context(), dim)
	if err != nil {
		h.respondError(c, "Failed to load options", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"values": values})
}

func (h *Handler) loadPage(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid page",
			})
			return
		}
		page = n
	}

	s := session(c)
	if err := s.LoadPage(c.Request.Context(), page); err != nil {
		h.respondError(c, "Failed to load products", err)
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

func (h *Handler) nextPage(c *gin.Context) {
	s := session(c)
	if err := s.NextPage(c.Request.Context()); err != nil {
		h.respondError(c, "Failed to load next page", err)
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

func (h *Handler) previousPage(c *gin.Context) {
	s := session(c)
	if err := s.PreviousPage(c.Request.Context()); err != nil {
		h.respondError(c, "Failed to load previous page", err)
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

func (h *Handler) toggleSelection(c *gin.Context) {
	var req toggleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	s := session(c)
	if !s.Toggle(req.Identity, req.Selected) {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Product cannot be selected",
		})
		return
	}
	snap := s.Snapshot()
	c.JSON(http.StatusOK, gin.H{"selectionCount": snap.SelectionCount, "canCommit": snap.CanCommit})
}

func (h *Handler) toggleAll(c *gin.Context) {
	var req toggleAllRequest
	if !h.bindJSON(c, &req) {
		return
	}
	s := session(c)
	changed := s.ToggleAll(req.Selected)
	snap := s.Snapshot()
	c.JSON(http.StatusOK, gin.H{"changed": changed, "selectionCount": snap.SelectionCount, "canCommit": snap.CanCommit})
}

func (h *Handler) getQueue(c *gin.Context) {
	s := session(c)
	c.JSON(http.StatusOK, gin.H{"queue": s.Queue(), "groups": s.QueueGroups()})
}

func (h *Handler) commitSelection(c *gin.Context) {
	s := session(c)
	added, err := s.CommitSelection(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to add to queue", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added, "queue": s.Queue()})
}

func (h *Handler) clearQueue(c *gin.Context) {
	session(c).ClearQueue()
	c.Status(http.StatusNoContent)
}

func (h *Handler) removeFromQueue(c *gin.Context) {
	if !session(c).RemoveFromQueue(c.Param("identity")) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product is not queued",
		})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) reorderQueue(c *gin.Context) {
	var req reorderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	s := session(c)
	if err := s.ReorderQueue(req.Identities); err != nil {
		h.respondError(c, "Failed to reorder queue", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"queue": s.Queue()})
}

func (h *Handler) reorderGroups(c *gin.Context) {
	var req reorderGroupsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	s := session(c)
	if err := s.ReorderGroups(req.Manufacturers); err != nil {
		h.respondError(c, "Failed to reorder groups", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"queue": s.Queue()})
}

func (h *Handler) setGrouping(c *gin.Context) {
	var req groupingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	s := session(c)
	s.SetGroupByManufacturer(req.Grouped)
	snap := s.Snapshot()
	c.JSON(http.StatusOK, gin.H{"groupByManufacturer": snap.GroupByManufacturer, "groups": snap.QueueGroups})
}

func (h *Handler) inspectProduct(c *gin.Context) {
	details, err := session(c).InspectProduct(c.Request.Context(), c.Param("identity"))
	if err != nil {
		h.respondError(c, "Failed to load details", err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *Handler) closeDetails(c *gin.Context) {
	session(c).CloseDetails()
	c.Status(http.StatusNoContent)
}

func (h *Handler) selectDistributor(c *gin.Context) {
	var req distributorRequest
	if !h.bindJSON(c, &req) {
		return
	}
	s := session(c)
	if err := s.SelectDistributor(req.ID); err != nil {
		h.respondError(c, "Failed to select distributor", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"distributor": s.Distributor(), "status": s.Status()})
}

func (h *Handler) submit(c *gin.Context) {
	payload, err := session(c).Submit(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to submit", err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (h *Handler) cancel(c *gin.Context) {
	if err := session(c).Cancel(c.Request.Context()); err != nil {
		h.respondError(c, "Failed to cancel", err)
		return
	}
	c.Status(http.StatusNoContent)
}
