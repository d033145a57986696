// Package crawler implements the concurrent crawl-and-download engine: the
// URL frontier, the scoping and extension classifier, the robots.txt gate,
// the download manager, the login-form authenticator, and the worker pool
// that ties them together. Rendering and navigation are delegated to the
// PageRenderer collaborator so the engine never touches the network directly
// except for the one-time robots.txt fetch.
package crawler
