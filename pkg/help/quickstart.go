package help

const QuickstartYAML = `# kwscan Quick Start

commands:
  basic_scan: |
    kwscan scan ./logs

  custom_keywords: |
    kwscan scan ./logs --keywords "error,timeout,refused" --workers 8

  from_config: |
    kwscan scan --config kwscan.yaml

  machine_readable: |
    kwscan scan ./logs --summary-yaml output/summary.yaml --metrics-file output/kwscan.prom

  list_runs: |
    kwscan history --limit 10

  run_details: |
    kwscan history show 5

config_file:
  dir: "./logs"
  keywords: "[error, warning, failed, success]"
  extensions: "[.txt, .log]"
  recursive: false
  workers: "number of CPUs when unset"
  shutdown_timeout: "60s (0 waits forever)"
  output: "output/log_result.txt"
  summary_yaml: "optional YAML summary path"
  metrics_file: "optional Prometheus textfile path"
  db: "kwscan.db next to the binary"
  no_history: false

counting_rules:
  - "Keywords match case-insensitively as substrings"
  - "A line counts once per keyword, however often the keyword repeats"
  - "Most frequent keyword ties go to the earlier keyword in the list"
  - "'None' when no keyword matched anything"

error_behavior:
  - "Unreadable files: reported as file_unreadable, partial counts kept"
  - "Worker panics: reported as worker_task_failed, pool keeps going"
  - "Shutdown timeout: stragglers cancelled and reported as shutdown_timeout"
  - "Exit codes: 0=success, 1=partial failure, 2=complete failure or bad setup"
`
