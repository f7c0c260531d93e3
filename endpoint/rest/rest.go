/*
 * Copyright 2023 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package rest serves proxied targets over HTTP.
//
//	GET /api/v1/invoke/:target/:method?args=4,2   call a method through the chain
//	POST /api/v1/invoke                          call with a JSON endpoint.Request body
//	GET /api/v1/targets                          list targets and their methods
//	GET /api/v1/advice                           list registered advice in order
//	GET /api/v1/metrics                          metrics snapshot, if a metrics aspect is registered
package rest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rulego/calcaop/api/types"
	"github.com/rulego/calcaop/builtin/aspect"
	"github.com/rulego/calcaop/endpoint"
	"github.com/rulego/calcaop/engine"
	"github.com/rulego/calcaop/utils/json"
)

const (
	InvokePath  = "/api/v1/invoke/:target/:method"
	CallPath    = "/api/v1/invoke"
	TargetsPath = "/api/v1/targets"
	AdvicePath  = "/api/v1/advice"
	MetricsPath = "/api/v1/metrics"
	// ArgsParam comma separated call arguments
	ArgsParam = "args"
)

// Config Rest 服务配置
type Config struct {
	// Server http服务器地址
	Addr        string
	CertFile    string
	CertKeyFile string
}

// Rest http 端点
type Rest struct {
	//配置
	Config Config
	engine *engine.Engine
	logger types.Logger
	//路由器
	router *httprouter.Router
	server *http.Server
	lock   sync.Mutex
}

func New(config Config, e *engine.Engine) *Rest {
	r := &Rest{
		Config: config,
		engine: e,
		logger: e.Config().Logger,
		router: httprouter.New(),
	}
	r.router.GET(InvokePath, r.wrap(r.invoke))
	r.router.POST(CallPath, r.wrap(r.call))
	r.router.GET(TargetsPath, r.wrap(r.targets))
	r.router.GET(AdvicePath, r.wrap(r.advice))
	r.router.GET(MetricsPath, r.wrap(r.metrics))
	return r
}

func (r *Rest) Router() *httprouter.Router {
	return r.router
}

func (r *Rest) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

// Start blocks serving until Stop; it returns http.ErrServerClosed after Stop.
func (r *Rest) Start() error {
	r.lock.Lock()
	r.server = &http.Server{Addr: r.Config.Addr, Handler: r.router}
	server := r.server
	r.lock.Unlock()

	if r.Config.CertKeyFile != "" && r.Config.CertFile != "" {
		r.logger.Printf("starting server with TLS on %s", r.Config.Addr)
		return server.ListenAndServeTLS(r.Config.CertFile, r.Config.CertKeyFile)
	}
	r.logger.Printf("starting server on %s", r.Config.Addr)
	return server.ListenAndServe()
}

func (r *Rest) Stop() {
	r.lock.Lock()
	server := r.server
	r.lock.Unlock()
	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		r.logger.Printf("rest shutdown err :%v", err)
	}
}

func (r *Rest) wrap(handle httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
		defer func() {
			//捕捉异常
			if e := recover(); e != nil {
				r.logger.Printf("rest handler err :%v", e)
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error", Kind: types.AdviceFailure.String()})
			}
		}()
		handle(w, req, params)
	}
}

// InvokeResponse body of a successful call
type InvokeResponse struct {
	Id     string        `json:"id"`
	Target string        `json:"target"`
	Method string        `json:"method"`
	Args   []interface{} `json:"args"`
	Result interface{}   `json:"result"`
}

// ErrorResponse body of a failed call
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (r *Rest) invoke(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
	args := endpoint.ParseArgs(req.URL.Query().Get(ArgsParam))
	reply := endpoint.Execute(r.engine, params.ByName("target"), params.ByName("method"), "", args...)
	if reply.Failed() {
		writeJSON(w, statusOf(reply.Err()), ErrorResponse{Error: reply.Error, Kind: reply.Kind})
		return
	}
	writeJSON(w, http.StatusOK, InvokeResponse{
		Id:     reply.Id,
		Target: reply.Target,
		Method: reply.Method,
		Args:   reply.Args,
		Result: reply.Result,
	})
}

func (r *Rest) call(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: types.InvalidArgument.String()})
		return
	}
	var request endpoint.Request
	if err := json.Unmarshal(body, &request); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: types.InvalidArgument.String()})
		return
	}
	reply := endpoint.Invoke(r.engine, request)
	status := http.StatusOK
	if reply.Failed() {
		status = statusOf(reply.Err())
	}
	writeJSON(w, status, reply)
}

// TargetInfo one proxied target
type TargetInfo struct {
	Id      string   `json:"id"`
	Methods []string `json:"methods"`
}

func (r *Rest) targets(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
	out := make([]TargetInfo, 0)
	for _, id := range r.engine.Targets() {
		proxy, _ := r.engine.Proxy(id)
		out = append(out, TargetInfo{Id: id, Methods: proxy.Methods()})
	}
	writeJSON(w, http.StatusOK, out)
}

// AdviceInfo one registered advice
type AdviceInfo struct {
	Id    string `json:"id"`
	Kind  string `json:"kind"`
	Order int    `json:"order"`
}

func (r *Rest) advice(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
	out := make([]AdviceInfo, 0)
	for _, item := range r.engine.Registry().All() {
		out = append(out, AdviceInfo{Id: item.Id, Kind: item.Kind.String(), Order: item.Order})
	}
	writeJSON(w, http.StatusOK, out)
}

func (r *Rest) metrics(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
	m, ok := aspect.MetricsOf(r.engine.Registry().All())
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "metrics aspect not registered"})
		return
	}
	writeJSON(w, http.StatusOK, m.GetMetrics().Get())
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, types.ErrMethodNotFound), errors.Is(err, types.ErrTargetNotFound):
		return http.StatusNotFound
	case types.Classify(err) == types.InvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
