package cli

import "cert-quiz-service/internal/domain"

// sampleQuestions provides a minimal Developer-Associate pool for running
// without Postgres; use the seed command to load it into a real database.
func sampleQuestions() map[string][]domain.Question {
	return map[string][]domain.Question{
		"Developer-Associate": {
			{
				ID:           "DEV-0001",
				ExamType:     "Developer-Associate",
				Domain:       "Development with AWS Services",
				QuestionType: domain.TypeSingleChoice,
				Difficulty:   "medium",
				QuestionText: "Which AWS service should you use to store session state data for a distributed web application?",
				Options: []domain.Option{
					{ID: "A", Text: "Amazon S3"},
					{ID: "B", Text: "Amazon DynamoDB"},
					{ID: "C", Text: "Amazon RDS"},
					{ID: "D", Text: "Amazon EFS"},
				},
				CorrectAnswers: []string{"B"},
				Explanation:    "Amazon DynamoDB is a fully managed NoSQL database that provides fast and predictable performance with seamless scalability. It's ideal for storing session state data due to its low latency and high availability.",
				References:     []string{"https://docs.aws.amazon.com/amazondynamodb/latest/developerguide/"},
				Status:         domain.StatusApproved,
			},
			{
				ID:           "DEV-0002",
				ExamType:     "Developer-Associate",
				Domain:       "Security",
				QuestionType: domain.TypeMultipleChoice,
				Difficulty:   "hard",
				QuestionText: "Which of the following are best practices for securing your AWS Lambda functions? (Select TWO)",
				Options: []domain.Option{
					{ID: "A", Text: "Store sensitive data in environment variables without encryption"},
					{ID: "B", Text: "Use IAM roles with least privilege permissions"},
					{ID: "C", Text: "Enable VPC configuration for functions that access VPC resources"},
					{ID: "D", Text: "Use the root account credentials in Lambda code"},
				},
				CorrectAnswers: []string{"B", "C"},
				Explanation:    "Best practices include using IAM roles with least privilege (B) and configuring VPC access when needed (C). Storing unencrypted sensitive data (A) and using root credentials (D) are security anti-patterns.",
				References: []string{
					"https://docs.aws.amazon.com/lambda/latest/dg/best-practices.html",
					"https://docs.aws.amazon.com/lambda/latest/dg/security-iam.html",
				},
				Status: domain.StatusApproved,
			},
			{
				ID:           "DEV-0003",
				ExamType:     "Developer-Associate",
				Domain:       "Deployment",
				QuestionType: domain.TypeSingleChoice,
				Difficulty:   "medium",
				QuestionText: "What is the maximum deployment package size for AWS Lambda?",
				Options: []domain.Option{
					{ID: "A", Text: "10 MB (compressed)"},
					{ID: "B", Text: "50 MB (compressed), 250 MB (uncompressed)"},
					{ID: "C", Text: "100 MB (compressed), 512 MB (uncompressed)"},
					{ID: "D", Text: "250 MB (compressed), 1 GB (uncompressed)"},
				},
				CorrectAnswers: []string{"B"},
				Explanation:    "AWS Lambda deployment package size limits are 50 MB for compressed .zip file and 250 MB for uncompressed code plus dependencies.",
				References:     []string{"https://docs.aws.amazon.com/lambda/latest/dg/limits.html"},
				Status:         domain.StatusApproved,
			},
			{
				ID:           "DEV-0004",
				ExamType:     "Developer-Associate",
				Domain:       "Troubleshooting and Optimization",
				QuestionType: domain.TypeScenarioBased,
				Difficulty:   "hard",
				QuestionText: "What is the MOST likely cause of this error?",
				Scenario:     "Your Lambda function is returning a 'Task timed out after 3.00 seconds' error intermittently, even though the function typically completes in 1-2 seconds.",
				Options: []domain.Option{
					{ID: "A", Text: "The Lambda function memory is set too low"},
					{ID: "B", Text: "The function is experiencing cold starts"},
					{ID: "C", Text: "There's a network timeout connecting to external resources"},
					{ID: "D", Text: "The Lambda runtime is outdated"},
				},
				CorrectAnswers: []string{"C"},
				Explanation:    "Intermittent timeouts with otherwise fast execution typically indicate network connectivity issues to external resources like databases or APIs. Cold starts (B) would cause consistent delays, not intermittent ones.",
				References: []string{
					"https://docs.aws.amazon.com/lambda/latest/dg/troubleshooting-invocation.html",
					"https://docs.aws.amazon.com/lambda/latest/dg/configuration-vpc.html",
				},
				Status: domain.StatusApproved,
			},
			{
				ID:           "DEV-0005",
				ExamType:     "Developer-Associate",
				Domain:       "Development with AWS Services",
				QuestionType: domain.TypeTrueFalse,
				Difficulty:   "easy",
				QuestionText: "AWS Lambda functions can be invoked synchronously and asynchronously.",
				Options: []domain.Option{
					{ID: "A", Text: "True"},
					{ID: "B", Text: "False"},
				},
				CorrectAnswers: []string{"A"},
				Explanation:    "AWS Lambda supports both synchronous (RequestResponse) and asynchronous (Event) invocation types. Synchronous invocations wait for the function to complete, while asynchronous invocations queue the event and return immediately.",
				References:     []string{"https://docs.aws.amazon.com/lambda/latest/dg/invocation-sync.html"},
				Status:         domain.StatusApproved,
			},
		},
	}
}
