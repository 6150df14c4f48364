// Copyright (c) 2026 BVK Chaitanya

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bvk/pacwatch/alert"
	"github.com/bvk/pacwatch/api"
	"github.com/bvk/pacwatch/expend"
	"github.com/bvk/pacwatch/gobs"
	"github.com/bvk/pacwatch/kvutil"
	"github.com/bvk/pacwatch/timerange"
	"github.com/bvk/pacwatch/tracker"
	"github.com/bvkgo/kv"
	"github.com/google/uuid"
)

// httpPostJSONHandler adapts a request/response function to an http.Handler
// matching the shape the command-line client posts: a json body over POST
// and a json response body.
func httpPostJSONHandler[T1, T2 any](fn func(context.Context, *T1) (*T2, error)) http.Handler {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "only POST requests are supported", http.StatusMethodNotAllowed)
			return
		}
		if v := r.Header.Get("content-type"); !strings.EqualFold(v, "application/json") {
			http.Error(w, "only application/json content is supported", http.StatusBadRequest)
			return
		}
		req := new(T1)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if c, ok := any(req).(interface{ Check() error }); ok {
			if err := c.Check(); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		resp, err := fn(r.Context(), req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data, err := json.Marshal(resp)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("content-type", "application/json")
		w.Write(data)
	}
	return http.HandlerFunc(handler)
}

// HandlerMap returns the daemon api endpoints.
func (s *Server) HandlerMap() map[string]http.Handler {
	return map[string]http.Handler{
		api.StatusPath:      httpPostJSONHandler(s.doStatus),
		api.CyclePath:       httpPostJSONHandler(s.doCycle),
		api.RecentPath:      httpPostJSONHandler(s.doRecent),
		api.AlertAddPath:    httpPostJSONHandler(s.doAlertAdd),
		api.AlertListPath:   httpPostJSONHandler(s.doAlertList),
		api.AlertRemovePath: httpPostJSONHandler(s.doAlertRemove),
	}
}

func (s *Server) doStatus(ctx context.Context, req *api.StatusRequest) (*api.StatusResponse, error) {
	resp := &api.StatusResponse{
		StartTime:     s.startTime,
		WindowDays:    s.opts.WindowDays,
		NextCycleTime: s.getNextCycleTime(),
	}

	last, err := s.getLastCycle(ctx)
	if err != nil {
		return nil, err
	}
	resp.LastCycle = last

	state := new(gobs.ServerState)
	load := func(ctx context.Context, r kv.Reader) error {
		n, err := tracker.Count(ctx, r)
		if err != nil {
			return err
		}
		resp.NumTracked = n

		v, err := kvutil.Get[gobs.ServerState](ctx, r, ServerStateKey)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return err
			}
			return nil
		}
		state = v
		return nil
	}
	if err := kv.WithReader(ctx, s.db, load); err != nil {
		return nil, err
	}

	for _, p := range s.posters {
		ch := &api.StatusResponseChannel{
			Name:    p.Name(),
			Enabled: true,
		}
		if cs, ok := state.ChannelMap[p.Name()]; ok {
			ch.Enabled = !cs.Disabled
			ch.LastPostTime = cs.LastPostTime
		}
		resp.Channels = append(resp.Channels, ch)
	}
	return resp, nil
}

func (s *Server) doCycle(ctx context.Context, req *api.CycleRequest) (*api.CycleResponse, error) {
	rs, err := s.RunCycle(ctx)
	if err != nil {
		return nil, err
	}
	return &api.CycleResponse{Cycle: rs}, nil
}

func (s *Server) doRecent(ctx context.Context, req *api.RecentRequest) (*api.RecentResponse, error) {
	window := timerange.LastDays(s.opts.WindowDays, time.UTC)
	if len(req.Window) != 0 {
		w, err := timerange.ParseWindow(req.Window, time.UTC)
		if err != nil {
			return nil, err
		}
		window = w
	}

	var rows []*gobs.Expenditure
	load := func(ctx context.Context, r kv.Reader) error {
		var err error
		rows, err = tracker.Rows(ctx, r, window)
		return err
	}
	if err := kv.WithReader(ctx, s.db, load); err != nil {
		return nil, err
	}

	resp := new(api.RecentResponse)
	for _, row := range rows {
		resp.Rows = append(resp.Rows, &api.RecentResponseRow{
			ID:  expend.ID(row),
			Row: row,
		})
	}
	return resp, nil
}

func (s *Server) doAlertAdd(ctx context.Context, req *api.AlertAddRequest) (*api.AlertAddResponse, error) {
	uid := uuid.New().String()
	a, err := alert.New(uid, req.Candidate, req.PACName, req.Direction, req.Threshold)
	if err != nil {
		return nil, err
	}
	save := func(ctx context.Context, rw kv.ReadWriter) error {
		return a.Save(ctx, rw)
	}
	if err := kv.WithReadWriter(ctx, s.db, save); err != nil {
		return nil, err
	}
	return &api.AlertAddResponse{UID: uid}, nil
}

func (s *Server) doAlertList(ctx context.Context, req *api.AlertListRequest) (*api.AlertListResponse, error) {
	var alerts []*alert.Alert
	load := func(ctx context.Context, r kv.Reader) error {
		var err error
		alerts, err = alert.LoadAll(ctx, r)
		return err
	}
	if err := kv.WithReader(ctx, s.db, load); err != nil {
		return nil, err
	}

	resp := new(api.AlertListResponse)
	for _, a := range alerts {
		state, err := a.State()
		if err != nil {
			return nil, err
		}
		resp.Alerts = append(resp.Alerts, &api.AlertListResponseItem{
			UID:        state.UID,
			Candidate:  state.Candidate,
			PACName:    state.PACName,
			Direction:  state.Direction,
			Threshold:  state.Threshold,
			CreateTime: state.CreateTime,
			LastTotal:  state.LastTotal,
			FiredTime:  state.FiredTime,
			FiredTotal: state.FiredTotal,
		})
	}
	return resp, nil
}

func (s *Server) doAlertRemove(ctx context.Context, req *api.AlertRemoveRequest) (*api.AlertRemoveResponse, error) {
	remove := func(ctx context.Context, rw kv.ReadWriter) error {
		if _, err := alert.Load(ctx, req.UID, rw); err != nil {
			return err
		}
		return alert.Delete(ctx, rw, req.UID)
	}
	if err := kv.WithReadWriter(ctx, s.db, remove); err != nil {
		return nil, err
	}
	return &api.AlertRemoveResponse{}, nil
}
