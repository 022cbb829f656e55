// Package preflight implements the "preflight" host check: it reports
// whether the compose tool and docker resolve on PATH, whether the docker
// daemon answers, and whether the project root exists.
package preflight
