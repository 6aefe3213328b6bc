package rpc

import (
	"fmt"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/MixinNetwork/plog/collector"
	"github.com/unrolled/render"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

func (impl *R) getStats(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	render.New().JSON(w, http.StatusOK, impl.Stats.Stats())
}

func (impl *R) getMessage(w http.ResponseWriter, r *http.Request, params map[string]string) {
	if impl.Store == nil {
		renderError(w, http.StatusNotFound, fmt.Errorf("message archive disabled"))
		return
	}
	id, err := strconv.ParseUint(params["id"], 10, 32)
	if err != nil {
		renderError(w, http.StatusBadRequest, fmt.Errorf("invalid message id %s", params["id"]))
		return
	}
	m, err := impl.Store.ReadMessage(uint32(id))
	if err != nil {
		renderError(w, http.StatusInternalServerError, err)
		return
	}
	if m == nil {
		renderError(w, http.StatusNotFound, fmt.Errorf("message %d not found", id))
		return
	}
	render.New().JSON(w, http.StatusOK, messageView(m))
}

func (impl *R) listMessages(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	if impl.Store == nil {
		renderError(w, http.StatusNotFound, fmt.Errorf("message archive disabled"))
		return
	}
	query := r.URL.Query()
	offset, limit := uint64(0), defaultListLimit
	if v := query.Get("offset"); v != "" {
		o, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			renderError(w, http.StatusBadRequest, fmt.Errorf("invalid offset %s", v))
			return
		}
		offset = o
	}
	if v := query.Get("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 {
			renderError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %s", v))
			return
		}
		limit = l
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	messages, err := impl.Store.ListMessages(uint32(offset), limit)
	if err != nil {
		renderError(w, http.StatusInternalServerError, err)
		return
	}
	views := make([]map[string]interface{}, len(messages))
	for i, m := range messages {
		views[i] = messageView(m)
	}
	render.New().JSON(w, http.StatusOK, views)
}

func messageView(m *collector.Message) map[string]interface{} {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	view := map[string]interface{}{
		"id":          m.Id,
		"checksum":    m.Checksum,
		"tags":        tags,
		"size":        len(m.Data),
		"received_at": m.ReceivedAt.UnixNano(),
	}
	if utf8.Valid(m.Data) {
		view["data"] = string(m.Data)
	} else {
		view["data"] = m.Data
	}
	return view
}

func renderError(w http.ResponseWriter, status int, err error) {
	render.New().JSON(w, status, map[string]interface{}{"error": err.Error()})
}
