// Package workflow sequences the one-shot run: register, build the follow
// graph, extract mutual pairs and deliver them.
package workflow
