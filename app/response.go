package app

import (
	"encoding/json"
	"net/http"
)

type envelope map[string]any

// JSON writes a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Success sends 200 JSON: {"data": v}
func Success(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, envelope{"data": v})
}

// Created sends 201 JSON: {"data": v}
func Created(w http.ResponseWriter, v any) {
	JSON(w, http.StatusCreated, envelope{"data": v})
}

// Error sends a JSON error response: {"message": msg}
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, envelope{"message": message})
}
