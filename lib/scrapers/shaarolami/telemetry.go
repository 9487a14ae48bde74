package shaarolami

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("customs-scanner.lib.scrapers.shaarolami")
