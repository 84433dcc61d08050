package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/juridoc/internal/model"
)

// FileProcessor annotates one document file
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string) (*FileResult, error)
}

// FileJob represents one document file to annotate
type FileJob struct {
	Path      string
	Processor FileProcessor
}

// Execute executes the file job
func (j *FileJob) Execute(ctx context.Context) Result {
	result, err := j.Processor.ProcessFile(ctx, j.Path)
	if err != nil {
		return &FileResult{
			Path:  j.Path,
			Error: err,
		}
	}
	result.Path = j.Path
	return result
}

// FileResult represents the outcome of annotating one file
type FileResult struct {
	Path       string
	OutputPath string
	Toggled    map[model.EntityType]int
	Failures   []model.TypeFailure
	Error      error
}

// GetError returns the error from the file result
func (r *FileResult) GetError() error {
	return r.Error
}

// BatchProcessor annotates multiple document files concurrently
type BatchProcessor struct {
	processor   FileProcessor
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(processor FileProcessor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
	}
}

// ProcessFiles annotates the files concurrently. Results follow the input order.
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*FileResult {
	if len(paths) == 0 {
		return []*FileResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&FileJob{
			Path:      path,
			Processor: b.processor,
		})
	}

	results := pool.Wait()

	fileResults := make([]*FileResult, len(results))
	for i, result := range results {
		fileResults[i] = result.(*FileResult)
	}

	return fileResults
}

// ProcessList reads document paths from a list file and annotates them
func (b *BatchProcessor) ProcessList(ctx context.Context, listPath string) ([]*FileResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read paths: %w", err)
	}

	return b.ProcessFiles(ctx, paths), nil
}

// ReadPathsFromFile reads document paths from a file (one per line).
// Blank lines and # comments are skipped, duplicates dropped.
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
