// Copyright 2025 The Foldsum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics provides service-wide prometheus conventions: the
// common metrics namespace and discovery of collectors defined as
// struct fields.
package metrics

import (
	"reflect"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace is prefixed before every metric. If it is changed, it must
// be done before any metrics collector is registered.
const Namespace = "foldsum"

// Collector is implemented by components that expose prometheus
// collectors for registration.
type Collector interface {
	Metrics() []prometheus.Collector
}

// PrometheusCollectorsFromFields returns the initialized prometheus
// collectors found in exported struct fields of i, in field order.
func PrometheusCollectorsFromFields(i interface{}) (cs []prometheus.Collector) {
	v := reflect.Indirect(reflect.ValueOf(i))
	for n := 0; n < v.NumField(); n++ {
		f := v.Field(n)
		if !f.CanInterface() {
			continue
		}
		if u, ok := f.Interface().(prometheus.Collector); ok {
			cs = append(cs, u)
		}
	}
	return cs
}
