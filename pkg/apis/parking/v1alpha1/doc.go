// Package v1alpha1 contains the occupancy data model shared by the dashboard
// components: the snapshot published by the sensor unit and the process-local
// display state derived from it.
package v1alpha1
