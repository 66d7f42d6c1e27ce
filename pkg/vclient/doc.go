// Package vclient is the entry point for building a vehicle API client that implements
// the vapi.Client interface.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/vehicle-client/pkg/vapi"
//	  "github.com/fivetwenty-io/vehicle-client/pkg/vclient"
//	)
//
//	func example() {
//	  // Base URL derived from API_HOSTNAME and API_PORT.
//	  cli, err := vclient.New(&vapi.Config{})
//	  if err != nil { log.Fatal(err) }
//
//	  // Or against an explicit endpoint.
//	  cli, err = vclient.NewWithEndpoint("http://localhost:8080/api")
//	  if err != nil { log.Fatal(err) }
//
//	  pages, err := cli.Vehicles().Search(context.Background(), vapi.VehicleFilter{Years: []int{2020}})
//	  if err != nil { log.Fatal(err) }
//
//	  vehicles, err := vapi.DecodePages[vapi.Vehicle](pages)
//	  _ = vehicles
//	}
//
// Transport failures are returned as *vapi.TransportError. Every HTTP status, including
// 304, 404 and 412, comes back as a *vapi.Response for the caller to inspect.
package vclient
