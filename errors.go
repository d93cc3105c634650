package appcompute

import "errors"

// Worker and builder errors.
var (
	// ErrBufferNotFound is returned when a step or accessor names a buffer
	// that was never registered on the builder.
	ErrBufferNotFound = errors.New("appcompute: buffer not found")

	// ErrStagingNotFound is returned when reading a buffer that has no
	// staging pair. Only buffers added with AddStaging can be read back.
	ErrStagingNotFound = errors.New("appcompute: staging buffer not found")

	// ErrDuplicateBuffer is returned when two buffers are registered under
	// the same name.
	ErrDuplicateBuffer = errors.New("appcompute: buffer name already registered")

	// ErrKernelNotFound is returned by SetDispatch when no pass uses the
	// named kernel.
	ErrKernelNotFound = errors.New("appcompute: kernel not found")

	// ErrNoSteps is returned when building a worker with an empty step list.
	ErrNoSteps = errors.New("appcompute: worker has no steps")

	// ErrNotExecuted is returned when reading a staged buffer before the
	// first Execute has completed.
	ErrNotExecuted = errors.New("appcompute: worker has not executed yet")

	// ErrWorkerClosed is returned when operating on a closed worker.
	ErrWorkerClosed = errors.New("appcompute: worker is closed")

	// ErrSizeMismatch is returned when a write does not match the
	// registered buffer size, or a swap pairs buffers of different sizes.
	ErrSizeMismatch = errors.New("appcompute: buffer size mismatch")
)
