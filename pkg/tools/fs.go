package tools

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

func (r *Registry) createFile(args createFileArgs) ToolResult {
	if args.FilePath == "" {
		return errorResult("file_path is required")
	}

	full, err := r.resolve(args.FilePath)
	if err != nil {
		return errorResult(fmt.Sprintf("Error creating file: %v", err))
	}

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return errorResult(fmt.Sprintf("Error creating file: %v", err))
	}
	if err := os.WriteFile(full, []byte(args.Content), 0644); err != nil {
		return errorResult(fmt.Sprintf("Error creating file: %v", err))
	}

	r.logger.Debug("created file %s", args.FilePath)
	return ToolResult{
		Success: true,
		Message: fmt.Sprintf("File created successfully: %s", args.FilePath),
		Path:    full,
	}
}

func (r *Registry) readFile(args readFileArgs) ToolResult {
	if args.FilePath == "" {
		return errorResult("file_path is required")
	}

	full, err := r.resolve(args.FilePath)
	if err != nil {
		return errorResult(fmt.Sprintf("Error reading file: %v", err))
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return errorResult(fmt.Sprintf("File not found: %s", args.FilePath))
		}
		return errorResult(fmt.Sprintf("Error reading file: %v", err))
	}

	return ToolResult{
		Success: true,
		Content: string(data),
		Path:    full,
	}
}

func (r *Registry) listFiles(args listFilesArgs) ToolResult {
	dir := args.Directory
	if dir == "" {
		dir = "."
	}

	full, err := r.resolve(dir)
	if err != nil {
		return errorResult(fmt.Sprintf("Error listing files: %v", err))
	}

	if _, err := os.Stat(full); os.IsNotExist(err) {
		return errorResult(fmt.Sprintf("Directory not found: %s", dir))
	}

	var files []string
	walkErr := filepath.WalkDir(full, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(r.baseDir, path)
		if relErr != nil {
			return relErr
		}
		files = append(files, rel)
		return nil
	})
	if walkErr != nil {
		return errorResult(fmt.Sprintf("Error listing files: %v", walkErr))
	}

	return ToolResult{
		Success: true,
		Files:   files,
		Count:   len(files),
	}
}

func (r *Registry) createDirectory(args createDirectoryArgs) ToolResult {
	if args.DirPath == "" {
		return errorResult("dir_path is required")
	}

	full, err := r.resolve(args.DirPath)
	if err != nil {
		return errorResult(fmt.Sprintf("Error creating directory: %v", err))
	}

	// Idempotent: no error if the directory already exists.
	if err := os.MkdirAll(full, 0755); err != nil {
		return errorResult(fmt.Sprintf("Error creating directory: %v", err))
	}

	return ToolResult{
		Success: true,
		Message: fmt.Sprintf("Directory created successfully: %s", args.DirPath),
		Path:    full,
	}
}
