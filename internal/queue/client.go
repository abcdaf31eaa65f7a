// Package queue carries analysis jobs between the API and the worker.
package queue

import "context"

// Client sends analysis jobs to a queue backend.
type Client interface {
	Enqueue(ctx context.Context, job AnalysisJob) error
}

// Receiver pulls messages from a queue backend. Bodies are returned raw so
// the consumer can decode, log and drop malformed payloads itself. Ack
// deletes a handled message; unacked messages are redelivered after the
// visibility timeout.
type Receiver interface {
	Receive(ctx context.Context, max int) ([]Delivery, error)
	Ack(ctx context.Context, d Delivery) error
}

// Delivery is one received message body plus its backend receipt.
type Delivery struct {
	Body    string
	Receipt string
}
