// SPDX-License-Identifier: AGPL-3.0-or-later
// hqfbp-go - Hamradio Quick File Broadcasting Protocol implementation
// Copyright (C) 2023-2026 Jacob McSwain
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/loic-fejoz/hqfbp-go>

package simulate

import "fmt"

// FormatPlain renders a Report as a single human-readable line, the
// default when --format markdown is not requested.
func FormatPlain(r Report) string {
	return fmt.Sprintf(
		"ber=%g encodings=%q trials=%d successes=%d failures=%d success_rate=%.4f",
		r.Options.BER, r.Options.ContentEncodings, r.Trials, r.Successes, r.Failures, r.SuccessRate,
	)
}

// FormatMarkdown renders a Report as a one-row markdown table, suitable
// for pasting into a writeup comparing several encoding choices.
func FormatMarkdown(r Report) string {
	return fmt.Sprintf(
		"| encodings | ber | trials | successes | failures | success rate |\n"+
			"|---|---|---|---|---|---|\n"+
			"| `%s` | %g | %d | %d | %d | %.2f%% |\n",
		r.Options.ContentEncodings, r.Options.BER, r.Trials, r.Successes, r.Failures, r.SuccessRate*100,
	)
}
