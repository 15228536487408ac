package store

import "errors"

// Customer is the subset of the customer document the dispatcher needs.
type Customer struct {
	ID    string `dynamodbav:"id" json:"id"`
	Name  string `dynamodbav:"name" json:"name"`
	Phone string `dynamodbav:"phone" json:"phone"`
}

var ErrNotFound = errors.New("store: not found")
