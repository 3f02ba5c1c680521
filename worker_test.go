package qnn

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestWorker(t *testing.T) {
	Convey("Given a worker", t, func() {
		ctx, cancel := context.WithCancel(context.Background())

		pool := &Q{
			ctx:     ctx,
			workers: make(chan chan Job, 1),
			space:   newSpace(),
			metrics: NewMetrics(),
		}

		worker := &Worker{
			pool: pool,
			jobs: make(chan Job, 1),
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			worker.run()
		}()

		Reset(func() {
			cancel()
			<-done
		})

		dispatch := func(job Job) chan Result {
			result := pool.space.Await(job.ID)
			(<-pool.workers) <- job
			return result
		}

		Convey("It should process a job successfully", func() {
			result := dispatch(Job{
				ID:        "job_success",
				Fn:        func() (any, error) { return 0.25, nil },
				StartTime: time.Now(),
			})

			select {
			case <-time.After(testTimeout):
				t.Fatal(timeoutMsg)
			case value := <-result:
				So(value.Error, ShouldBeNil)
				So(value.Value, ShouldEqual, 0.25)
			}

			So(pool.metrics.Snapshot().JobCount, ShouldEqual, int64(1))
		})

		Convey("It should pass a job error through", func() {
			cause := errors.New("simulation failed")
			result := dispatch(Job{
				ID:        "job_error",
				Fn:        func() (any, error) { return nil, cause },
				StartTime: time.Now(),
			})

			value := <-result
			So(value.Error, ShouldEqual, cause)
			So(pool.metrics.Snapshot().FailedJobs, ShouldEqual, int64(1))
		})

		Convey("It should turn a panic into an error", func() {
			result := dispatch(Job{
				ID:        "job_panic",
				Fn:        func() (any, error) { panic("index out of range") },
				StartTime: time.Now(),
			})

			value := <-result
			So(value.Error, ShouldNotBeNil)
			So(value.Error.Error(), ShouldContainSubstring, "job_panic panicked")
		})
	})
}
