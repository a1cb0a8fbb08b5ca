package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockReembedder is a mock implementation of Reembedder
type MockReembedder struct {
	mock.Mock
}

func (m *MockReembedder) Pass(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestReembedWorker_DrainsBatches(t *testing.T) {
	reembedder := new(MockReembedder)
	worker := NewReembedWorker(reembedder)

	// Two non-empty passes, then a pass that finds nothing.
	reembedder.On("Pass", mock.Anything).Return(20, nil).Once()
	reembedder.On("Pass", mock.Anything).Return(7, nil).Once()
	reembedder.On("Pass", mock.Anything).Return(0, nil).Once()

	err := worker.ProcessJobs(context.Background())

	require.NoError(t, err)
	reembedder.AssertExpectations(t)
}

func TestReembedWorker_NothingToDo(t *testing.T) {
	reembedder := new(MockReembedder)
	worker := NewReembedWorker(reembedder)

	reembedder.On("Pass", mock.Anything).Return(0, nil).Once()

	err := worker.ProcessJobs(context.Background())

	require.NoError(t, err)
	reembedder.AssertExpectations(t)
}

func TestReembedWorker_PropagatesError(t *testing.T) {
	reembedder := new(MockReembedder)
	worker := NewReembedWorker(reembedder)

	reembedder.On("Pass", mock.Anything).Return(3, errors.New("provider down")).Once()

	err := worker.ProcessJobs(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "reembed pass failed")
}
