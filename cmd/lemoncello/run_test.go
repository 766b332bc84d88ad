package main

import (
	"context"
	"io"
	"testing"
	"time"
)

func TestReadAnswersLowercasesLines(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	go pw.Write([]byte("  S \n"))

	answers := readAnswers(context.Background(), pr)
	if got := <-answers; got != "s" {
		t.Fatalf("answer = %q, want %q", got, "s")
	}
}

func TestReadAnswersReturnsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pr, pw := io.Pipe()
	defer pw.Close()
	go pw.Write([]byte("Y\nw\n"))

	answers := readAnswers(ctx, pr)
	if got := <-answers; got != "y" {
		t.Fatalf("first answer = %q, want %q", got, "y")
	}

	// Poll without blocking so the pending "w" is never taken.
	cancel()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		select {
		case answer, ok := <-answers:
			if !ok {
				return
			}
			t.Fatalf("unexpected answer %q after the context ended", answer)
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	t.Fatal("answers channel still open after the context ended")
}
