package handler

var WriteError = writeError
