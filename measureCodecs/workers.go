package main

import (
	"fmt"

	fecom "github.com/supernemo-dbd/fecom_go/pkg"
)

// The benchmark times the codecs through this channel pool in both
// directions so that encode and decode figures share the same scheduling.

type WorkerData[In any] struct {
	Index int
	Input In
}

type WorkerResult[Out any] struct {
	Index  int
	Output Out
	Err    error
}

func worker[In, Out any](id int, name string, work func(In) (Out, error), jobs <-chan WorkerData[In], results chan<- WorkerResult[Out]) {
	for job := range jobs {
		if verbose {
			logger.Info(fmt.Sprintf("Worker %d %s item %d", id, name, job.Index), "worker")
		}
		output, err := work(job.Input)
		results <- WorkerResult[Out]{Index: job.Index, Output: output, Err: err}
	}
}

func sendToWorkers[In any](inputs []In, jobs chan<- WorkerData[In]) {
	for i, input := range inputs {
		jobs <- WorkerData[In]{Index: i, Input: input}
	}
	close(jobs)
}

// runPool applies work to every input with numWorkers goroutines and returns
// the outputs in input order along with the first error.
func runPool[In, Out any](name string, inputs []In, numWorkers int, work func(In) (Out, error)) ([]Out, error) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	jobs := make(chan WorkerData[In], 100)
	results := make(chan WorkerResult[Out], 100)
	for w := 1; w <= numWorkers; w++ {
		go worker(w, name, work, jobs, results)
	}
	go sendToWorkers(inputs, jobs)

	outputs := make([]Out, len(inputs))
	var firstErr error
	for range inputs {
		result := <-results
		if result.Err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s item %d: %w", name, result.Index, result.Err)
		}
		outputs[result.Index] = result.Output
	}
	return outputs, firstErr
}

func encodeEvents(codec fecom.Codec, events []*fecom.CommissioningEvent, numWorkers int) ([][]byte, error) {
	return runPool("encoding", events, numWorkers, codec.Encode)
}

func decodeRecords(codec fecom.Codec, records [][]byte, numWorkers int) ([]*fecom.CommissioningEvent, error) {
	return runPool("decoding", records, numWorkers, codec.Decode)
}
