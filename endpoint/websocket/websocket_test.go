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

package websocket

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rulego/calcaop/api/types"
	"github.com/rulego/calcaop/builtin/aspect"
	"github.com/rulego/calcaop/components/calculator"
	"github.com/rulego/calcaop/endpoint"
	"github.com/rulego/calcaop/engine"
	"github.com/rulego/calcaop/utils/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T) *websocket.Conn {
	e, err := engine.New(types.WithLogger(types.DiscardLogger), types.WithAspects(&aspect.Validation{}))
	require.NoError(t, err)
	calculator.Bind(e)
	router := httprouter.New()
	New(e).Mount(router)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+Path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func roundTrip(t *testing.T, c *websocket.Conn, mt int, request string) endpoint.Reply {
	require.NoError(t, c.WriteMessage(mt, []byte(request)))
	gotType, data, err := c.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, mt, gotType)
	var reply endpoint.Reply
	require.NoError(t, json.Unmarshal(data, &reply))
	return reply
}

func TestWebsocket(t *testing.T) {
	c := dial(t)

	reply := roundTrip(t, c, websocket.TextMessage, `{"id":"w-1","target":"arithmeticCalculator","method":"div","args":[4,2]}`)
	assert.Equal(t, "w-1", reply.Id)
	assert.Equal(t, 2.0, reply.Result)

	reply = roundTrip(t, c, websocket.BinaryMessage, `{"target":"unitCalculator","method":"kilogramToPound","args":[10]}`)
	assert.Equal(t, 22.0, reply.Result)

	reply = roundTrip(t, c, websocket.TextMessage, `{"target":"arithmeticCalculator","method":"sub","args":[-5,2]}`)
	assert.Equal(t, "Positive numbers only", reply.Error)
	assert.Equal(t, "InvalidArgument", reply.Kind)

	reply = roundTrip(t, c, websocket.TextMessage, `not json`)
	assert.True(t, reply.Failed())
	assert.Equal(t, "InvalidArgument", reply.Kind)

	reply = roundTrip(t, c, websocket.TextMessage, `{"target":"arithmeticCalculator","method":"pow","args":[2,2]}`)
	assert.Equal(t, "TargetFailure", reply.Kind)
}
