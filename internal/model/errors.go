package model

import "errors"

// Task errors
var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrTitleRequired    = errors.New("task title is required")
	ErrCategoryRequired = errors.New("task category is required")
)

// Category errors
var (
	ErrCategoryNotFound = errors.New("category not found")
)

// User errors
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already in use")
)
