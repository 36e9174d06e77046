package linear

// GraphQL documents. Field selections match the flattened output models;
// anything not selected here never leaves the upstream API.

const issueFields = `
id
identifier
title
description
priority
url
createdAt
updatedAt
state { id name type }
team { id name key }
assignee { id name }
project { id name }
labels { nodes { id name } }`

const documentFields = `
id
title
content
url
archivedAt
createdAt
updatedAt
project { id name }
creator { id name }`

const queryViewer = `
query {
  viewer { id name email active }
}`

const queryTeams = `
query {
  teams { nodes { id name key } }
}`

const queryUsers = `
query {
  users { nodes { id name email active } }
}`

const queryProjects = `
query {
  projects { nodes { id name status: state } }
}`

const queryInitiatives = `
query {
  initiatives { nodes { id name status } }
}`

const queryLabels = `
query {
  issueLabels { nodes { id name color } }
}`

const queryWorkflowStates = `
query($teamId: ID) {
  workflowStates(filter: { team: { id: { eq: $teamId } } }) {
    nodes { id name type }
  }
}`

const queryIssues = `
query($filter: IssueFilter, $first: Int) {
  issues(filter: $filter, first: $first, orderBy: updatedAt) {
    nodes {` + issueFields + `
    }
  }
}`

const queryIssue = `
query($id: String!) {
  issue(id: $id) {` + issueFields + `
    comments {
      nodes { id body url createdAt user { id name } }
    }
  }
}`

const mutationIssueCreate = `
mutation($input: IssueCreateInput!) {
  issueCreate(input: $input) {
    success
    issue {` + issueFields + `
    }
  }
}`

const mutationIssueUpdate = `
mutation($id: String!, $input: IssueUpdateInput!) {
  issueUpdate(id: $id, input: $input) {
    success
    issue {` + issueFields + `
    }
  }
}`

const mutationCommentCreate = `
mutation($input: CommentCreateInput!) {
  commentCreate(input: $input) {
    success
    comment { id body url createdAt user { id name } }
  }
}`

const mutationCommentUpdate = `
mutation($id: String!, $input: CommentUpdateInput!) {
  commentUpdate(id: $id, input: $input) {
    success
    comment { id body url createdAt user { id name } }
  }
}`

const queryDocuments = `
query($first: Int) {
  documents(first: $first, includeArchived: true) {
    nodes {` + documentFields + `
    }
  }
}`

const queryDocument = `
query($id: String!) {
  document(id: $id) {` + documentFields + `
  }
}`

const mutationDocumentCreate = `
mutation($input: DocumentCreateInput!) {
  documentCreate(input: $input) {
    success
    document {` + documentFields + `
    }
  }
}`

const mutationDocumentUpdate = `
mutation($id: String!, $input: DocumentUpdateInput!) {
  documentUpdate(id: $id, input: $input) {
    success
    document {` + documentFields + `
    }
  }
}`
