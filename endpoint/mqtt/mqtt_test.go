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

package mqtt

import (
	"sync"
	"testing"

	"github.com/rulego/calcaop/api/types"
	"github.com/rulego/calcaop/builtin/aspect"
	"github.com/rulego/calcaop/components/calculator"
	"github.com/rulego/calcaop/endpoint"
	"github.com/rulego/calcaop/engine"
	"github.com/rulego/calcaop/utils/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct {
	topic   string
	payload []byte
}

func (m message) Duplicate() bool   { return false }
func (m message) Qos() byte         { return 0 }
func (m message) Retained() bool    { return false }
func (m message) Topic() string     { return m.topic }
func (m message) MessageID() uint16 { return 1 }
func (m message) Payload() []byte   { return m.payload }
func (m message) Ack()              {}

type published struct {
	lock    sync.Mutex
	replies map[string][]endpoint.Reply
}

func (p *published) publish(topic string, payload []byte) error {
	var reply endpoint.Reply
	if err := json.Unmarshal(payload, &reply); err != nil {
		return err
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	p.replies[topic] = append(p.replies[topic], reply)
	return nil
}

func newEndpoint(t *testing.T, prefix string) (*Mqtt, *published) {
	e, err := engine.New(types.WithLogger(types.DiscardLogger), types.WithAspects(&aspect.Validation{}))
	require.NoError(t, err)
	calculator.Bind(e)
	m := New(Config{Server: "tcp://127.0.0.1:1883", Prefix: prefix}, e)
	out := &published{replies: map[string][]endpoint.Reply{}}
	m.publish = out.publish
	return m, out
}

func TestTopics(t *testing.T) {
	m, _ := newEndpoint(t, "")
	assert.Equal(t, "calcaop/invoke/+/+", m.InvokeTopic())
	assert.Equal(t, "calcaop/reply/arithmeticCalculator/add", m.ReplyTopic("arithmeticCalculator", "add"))

	target, method, err := m.parseTopic("calcaop/invoke/unitCalculator/kilogramToPound")
	require.NoError(t, err)
	assert.Equal(t, "unitCalculator", target)
	assert.Equal(t, "kilogramToPound", method)

	for _, topic := range []string{"calcaop/reply/a/b", "calcaop/invoke/a", "calcaop/invoke//b", "other/invoke/a/b/c"} {
		_, _, err := m.parseTopic(topic)
		assert.ErrorIs(t, err, ErrBadTopic, topic)
	}
}

func TestParsePayload(t *testing.T) {
	req, err := ParsePayload([]byte(`{"id":"m-1","args":[4,2]}`))
	require.NoError(t, err)
	assert.Equal(t, "m-1", req.Id)
	assert.Equal(t, []interface{}{4.0, 2.0}, req.Args)

	req, err = ParsePayload([]byte(" 1, 2 "))
	require.NoError(t, err)
	assert.Equal(t, []interface{}{1.0, 2.0}, req.Args)

	req, err = ParsePayload(nil)
	require.NoError(t, err)
	assert.Empty(t, req.Args)

	_, err = ParsePayload([]byte(`{"args":`))
	assert.Error(t, err)
}

func TestHandle(t *testing.T) {
	m, out := newEndpoint(t, "lab")

	m.Handle(nil, message{topic: "lab/invoke/arithmeticCalculator/add", payload: []byte("1,2")})
	m.Handle(nil, message{topic: "lab/invoke/arithmeticCalculator/div", payload: []byte(`{"id":"d-1","args":[-5,2]}`)})
	m.Handle(nil, message{topic: "lab/invoke/arithmeticCalculator/div", payload: []byte(`{"args":[4,0]}`)})
	// dropped without a reply
	m.Handle(nil, message{topic: "lab/invoke/arithmeticCalculator", payload: []byte("1,2")})
	m.Handle(nil, message{topic: "lab/invoke/arithmeticCalculator/add", payload: []byte("{")})

	require.Len(t, out.replies["lab/reply/arithmeticCalculator/add"], 1)
	add := out.replies["lab/reply/arithmeticCalculator/add"][0]
	assert.Equal(t, 3.0, add.Result)
	assert.False(t, add.Failed())

	divs := out.replies["lab/reply/arithmeticCalculator/div"]
	require.Len(t, divs, 2)
	assert.Equal(t, "d-1", divs[0].Id)
	assert.Equal(t, "Positive numbers only", divs[0].Error)
	assert.Equal(t, "InvalidArgument", divs[0].Kind)
	assert.Equal(t, "division by zero", divs[1].Error)
	assert.Equal(t, "TargetFailure", divs[1].Kind)
	assert.Len(t, out.replies, 2)
}

func TestHandleNotStarted(t *testing.T) {
	m, _ := newEndpoint(t, "")
	m.publish = nil
	assert.NotPanics(t, func() {
		m.Handle(nil, message{topic: "calcaop/invoke/arithmeticCalculator/add", payload: []byte("1,2")})
	})
	m.Stop()
}

func TestNewTLSConfig(t *testing.T) {
	config, err := newTLSConfig("", "", "")
	assert.NoError(t, err)
	assert.Nil(t, config)

	_, err = newTLSConfig("testdata/missing-ca.pem", "", "")
	assert.Error(t, err)
}
