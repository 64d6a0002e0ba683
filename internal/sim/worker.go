package sim

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const (
	TASK_CHAN_SIZE = 100
)

type WorkerFunction = func(t *tomb.Tomb, task any) error
type WorkerPool struct {
	n    int            // number of workers
	work WorkerFunction // do work method
}

func NewWorkerPool(size int, work WorkerFunction) *WorkerPool {
	return &WorkerPool{
		n:    max(size, 1),
		work: work,
	}
}

// Process hands every task to the pool and blocks until all of them were
// worked, a worker failed, or the tomb started dying. Any error returned by
// the work method is fatal to the batch.
func (pool *WorkerPool) Process(t *tomb.Tomb, tasks []any) error {
	queue := make(chan any, min(len(tasks), TASK_CHAN_SIZE))

	// Maintain a full pool of workers.
	for id := range pool.n {
		t.Go(func() error {
			return pool.worker(t, id, queue)
		})
	}

feed:
	for _, task := range tasks {
		select {
		case <-t.Dying():
			break feed
		case queue <- task:
		}
	}
	close(queue)

	return t.Wait()
}

// Workers wait on tasks in the queue and action them.
func (pool *WorkerPool) worker(t *tomb.Tomb, id int, queue <-chan any) error {
	for task := range queue {
		select {
		case <-t.Dying():
			return nil
		default:
		}
		if err := pool.work(t, task); err != nil {
			log.Error().Err(err).Int("id", id).Msg("worker exiting")
			return err
		}
	}
	return nil
}
