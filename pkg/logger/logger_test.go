// Copyright 2025 UMH Systems GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logger_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/united-manufacturing-hub/payment-core/pkg/logger"
)

var _ = Describe("Logger", func() {
	Describe("New", func() {
		It("builds loggers at the requested level", func() {
			log := logger.New("DEBUG", logger.FormatJSON)
			Expect(log.Core().Enabled(zapcore.DebugLevel)).To(BeTrue())

			log = logger.New("ERROR", logger.FormatJSON)
			Expect(log.Core().Enabled(zapcore.InfoLevel)).To(BeFalse())
			Expect(log.Core().Enabled(zapcore.ErrorLevel)).To(BeTrue())
		})

		It("treats PRODUCTION as info level", func() {
			log := logger.New("PRODUCTION", logger.FormatConsole)
			Expect(log.Core().Enabled(zapcore.DebugLevel)).To(BeFalse())
			Expect(log.Core().Enabled(zapcore.InfoLevel)).To(BeTrue())
		})
	})

	Describe("Reconfigure", func() {
		AfterEach(func() {
			// Leave the suite with the default global behind.
			logger.Reconfigure(string(logger.ProductionLevel), string(logger.FormatConsole))
		})

		It("replaces the global logger with the configured level", func() {
			logger.Reconfigure("DEBUG", string(logger.FormatJSON))
			Expect(zap.L().Core().Enabled(zapcore.DebugLevel)).To(BeTrue())

			logger.Reconfigure("ERROR", string(logger.FormatJSON))
			Expect(zap.L().Core().Enabled(zapcore.InfoLevel)).To(BeFalse())
		})

		It("tolerates unknown formats and lowercase levels", func() {
			logger.Reconfigure("debug", "confetti")
			Expect(zap.L().Core().Enabled(zapcore.DebugLevel)).To(BeTrue())
		})

		It("hands out named loggers built on the reconfigured global", func() {
			logger.Reconfigure("ERROR", string(logger.FormatConsole))

			log := logger.For(logger.ComponentConfig)
			Expect(log.Desugar().Core().Enabled(zapcore.InfoLevel)).To(BeFalse())
		})
	})
})
