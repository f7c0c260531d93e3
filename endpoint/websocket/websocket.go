/*
 * Copyright 2024 The RuleGo Authors.
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

// Package websocket serves proxied targets over a websocket connection. Each
// text or binary frame is a JSON endpoint.Request; every request gets one
// endpoint.Reply frame of the same message type.
package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rulego/calcaop/api/types"
	"github.com/rulego/calcaop/endpoint"
	"github.com/rulego/calcaop/engine"
	"github.com/rulego/calcaop/utils/json"
)

// Path default mount path
const Path = "/api/v1/ws"

// Websocket websocket 端点
type Websocket struct {
	Upgrader websocket.Upgrader
	engine   *engine.Engine
	logger   types.Logger
}

func New(e *engine.Engine) *Websocket {
	return &Websocket{
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		engine: e,
		logger: e.Config().Logger,
	}
}

// Mount registers the handler on router at Path.
func (ws *Websocket) Mount(router *httprouter.Router) {
	router.GET(Path, ws.Handle)
}

func (ws *Websocket) Handle(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	c, err := ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.Printf("upgrade: %v", err)
		return
	}
	defer func() {
		_ = c.Close()
		//捕捉异常
		if e := recover(); e != nil {
			ws.logger.Printf("ws handler err :%v", e)
		}
	}()
	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			break
		}
		if mt != websocket.BinaryMessage && mt != websocket.TextMessage {
			continue
		}
		body, err := json.Marshal(ws.reply(message))
		if err != nil {
			ws.logger.Printf("ws reply marshal err :%v", err)
			continue
		}
		if err := c.WriteMessage(mt, body); err != nil {
			ws.logger.Printf("ws write err :%v", err)
			break
		}
	}
}

func (ws *Websocket) reply(message []byte) endpoint.Reply {
	var req endpoint.Request
	if err := json.Unmarshal(message, &req); err != nil {
		return endpoint.Reply{Error: err.Error(), Kind: types.InvalidArgument.String()}
	}
	return endpoint.Invoke(ws.engine, req)
}
