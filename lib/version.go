package lib

// Version is the compiler version recorded with staged artifacts.
const Version = "0.3.0"
