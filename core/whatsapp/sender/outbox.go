package sender

import (
	"context"

	"github.com/jummai/wabot/core/whatsapp"
)

// Outbox couples the Twilio client with the dispatcher: EnqueueText
// accepts a reply immediately and delivers it from the worker pool.
type Outbox struct {
	client *whatsapp.Client
	disp   *Dispatcher
}

// NewOutbox wires a client to a running dispatcher.
func NewOutbox(client *whatsapp.Client, disp *Dispatcher) *Outbox {
	return &Outbox{client: client, disp: disp}
}

// EnqueueText queues one text message for asynchronous delivery.
func (o *Outbox) EnqueueText(ctx context.Context, to, body string) error {
	return o.disp.Enqueue(ctx, "send_text", to, func(sendCtx context.Context) error {
		_, err := o.client.SendText(sendCtx, to, body)
		return err
	})
}

// Close drains the queue and stops the workers.
func (o *Outbox) Close() {
	o.disp.Close()
}
