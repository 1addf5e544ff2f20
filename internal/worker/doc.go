// Package worker validates and starts the external worker process.
//
// The worker is Aimsun's console binary running the bridge script:
//
//	<executable> -script <bridgeScript> <channelAddr> <projectFile>
//
// with its working directory set to the worker's install directory. The
// project file is checked before anything is spawned. Launch returns as soon
// as the process has started; it never waits for the worker to connect.
//
// The returned Handle keeps the controller independent of os/exec so that
// tests can drive the controller against an in-memory worker.
package worker
