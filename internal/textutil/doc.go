// Package textutil holds small string helpers shared by the filing layer:
// filesystem-safe sanitization of folder and file name segments, plus a
// generic ternary.
package textutil
