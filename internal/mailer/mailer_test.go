package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"
	"net/textproto"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"shopadmin/pkg/rabbitmq"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(queue string, body []byte) error {
	args := m.Called(queue, body)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func TestQueueMailer_Send(t *testing.T) {
	pub := new(MockPublisher)
	qm := NewQueueMailer(pub, "email_queue")
	msg := Message{To: []string{"a@example.com"}, Subject: "Hi", Body: "there"}

	pub.On("PublishJSON", "email_queue", mock.MatchedBy(func(body []byte) bool {
		var decoded Message
		return json.Unmarshal(body, &decoded) == nil && decoded.Subject == "Hi" && decoded.To[0] == "a@example.com"
	})).Return(nil).Once()
	assert.NoError(t, qm.Send(context.Background(), msg))

	pub.On("PublishJSON", "email_queue", mock.Anything).Return(errors.New("channel closed")).Once()
	err := qm.Send(context.Background(), msg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "channel closed")
	pub.AssertExpectations(t)
}

func TestDeliveryHandler(t *testing.T) {
	next := new(MockMailer)
	handle := DeliveryHandler(next, zap.NewNop())
	msg := Message{To: []string{"a@example.com"}, Subject: "Reset", Body: "link"}
	body, _ := json.Marshal(msg)

	next.On("Send", msg).Return(nil).Once()
	assert.NoError(t, handle(amqp.Delivery{Body: body}))

	next.On("Send", msg).Return(errors.New("smtp down")).Once()
	err := handle(amqp.Delivery{Body: body})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, rabbitmq.ErrDiscard), "transient failures are requeued")

	next.On("Send", msg).Return(fmt.Errorf("%w: mailbox unavailable", ErrPermanent)).Once()
	err = handle(amqp.Delivery{Body: body})
	assert.ErrorIs(t, err, rabbitmq.ErrDiscard)

	assert.NoError(t, handle(amqp.Delivery{Body: []byte("not json")}))
	next.AssertExpectations(t)
}

func TestSMTPMailer_Send(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "mail.local", Port: "2525", Username: "u", Password: "p", From: "no-reply@shop.local"})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotRaw []byte
	m.sendMail = func(addr string, a smtp.Auth, from string, to []string, raw []byte) error {
		gotAddr, gotFrom, gotTo, gotRaw = addr, from, to, raw
		return nil
	}

	err := m.Send(context.Background(), Message{To: []string{"user@example.com"}, Subject: "Password Reset Request", Body: "Click"})
	require.NoError(t, err)
	assert.Equal(t, "mail.local:2525", gotAddr)
	assert.Equal(t, "no-reply@shop.local", gotFrom)
	assert.Equal(t, []string{"user@example.com"}, gotTo)
	assert.Contains(t, string(gotRaw), "Subject: Password Reset Request\r\n")
	assert.Contains(t, string(gotRaw), "\r\n\r\nClick")

	assert.Error(t, m.Send(context.Background(), Message{Subject: "nobody"}))
}

func TestSMTPMailer_SendClassifiesRejections(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "mail.local", Port: "25", From: "no-reply@shop.local"})
	msg := Message{To: []string{"ghost@example.com"}, Subject: "Hi", Body: "x"}

	m.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return &textproto.Error{Code: 550, Msg: "No such user"}
	}
	err := m.Send(context.Background(), msg)
	assert.ErrorIs(t, err, ErrPermanent)
	assert.Contains(t, err.Error(), "No such user")

	m.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return &textproto.Error{Code: 421, Msg: "Try again later"}
	}
	err = m.Send(context.Background(), msg)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrPermanent))

	m.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("dial tcp: connection refused")
	}
	assert.False(t, errors.Is(m.Send(context.Background(), msg), ErrPermanent))
}

func TestLogMailer_SendOmitsBody(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := NewLogMailer(zap.New(core))

	err := m.Send(context.Background(), Message{
		To:      []string{"a@example.com"},
		Subject: "Password Reset Request",
		Body:    "Click the link to reset your password: http://x/reset-password/u/SECRETTOKEN/",
	})
	require.NoError(t, err)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "Password Reset Request", fields["subject"])
	assert.NotContains(t, fields, "body")
	for _, v := range fields {
		assert.NotContains(t, fmt.Sprint(v), "SECRETTOKEN")
	}
}
